package request

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	Password string `json:"password,omitempty"`
}

// JoinSessionRequest is the request body for joining a session
type JoinSessionRequest struct {
	Password string `json:"password,omitempty"`
}

// GuessRequest is the request body for submitting a guess
type GuessRequest struct {
	Word string `json:"word"`
}
