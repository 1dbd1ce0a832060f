package model

// PlayerID uniquely identifies a player across the system.
// Identities are issued by the external auth provider; the service only trusts them.
type PlayerID string
