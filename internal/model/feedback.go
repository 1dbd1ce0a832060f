package model

// LetterResult classifies one letter of a guess against the target
type LetterResult string

const (
	LetterRight         LetterResult = "RIGHT"
	LetterWrongPosition LetterResult = "WRONG_POSITION"
	LetterMissing       LetterResult = "MISSING"
)

// IsWinning returns true if every letter is in the right position
func IsWinning(feedback []LetterResult) bool {
	if len(feedback) == 0 {
		return false
	}
	for _, r := range feedback {
		if r != LetterRight {
			return false
		}
	}
	return true
}
