package app

import "live-quiz-service/internal/domain"

// ScoreDelta returns the score change caused by replacing previous with next.
// A nil previous means the answer is new.
func ScoreDelta(previous *domain.Answer, next domain.Answer) int {
	wasCorrect := previous != nil && previous.IsCorrect
	switch {
	case !wasCorrect && next.IsCorrect:
		return 1
	case wasCorrect && !next.IsCorrect:
		return -1
	default:
		return 0
	}
}

// CountCorrect is the score a player should hold for the given answers.
func CountCorrect(answers []domain.Answer) int {
	n := 0
	for _, a := range answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}
