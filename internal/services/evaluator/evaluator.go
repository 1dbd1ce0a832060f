// Package evaluator computes Wordle-style feedback for a guess.
package evaluator

import "github.com/mcoot/wordduel/internal/model"

// Evaluate classifies each letter of guess against target.
//
// Exact matches are resolved first so that a repeated letter only earns
// WRONG_POSITION credit for occurrences of the target not already matched.
// Both words must have the same length; callers validate this.
func Evaluate(target, guess string) []model.LetterResult {
	t := []rune(target)
	g := []rune(guess)
	result := make([]model.LetterResult, len(g))

	remaining := make(map[rune]int, len(t))
	for _, r := range t {
		remaining[r]++
	}

	// Pass 1: exact matches
	for i := range g {
		if i < len(t) && g[i] == t[i] {
			result[i] = model.LetterRight
			remaining[g[i]]--
		}
	}

	// Pass 2: misplaced or missing
	for i := range g {
		if result[i] == model.LetterRight {
			continue
		}
		if remaining[g[i]] > 0 {
			result[i] = model.LetterWrongPosition
			remaining[g[i]]--
		} else {
			result[i] = model.LetterMissing
		}
	}

	return result
}
