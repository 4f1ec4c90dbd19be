package domain

// RevealRank marks how far the end-of-game standings have been announced.
// 0 means nothing revealed; 3, 2 and 1 are the lowest place announced so far.
type RevealRank int

const (
	RankHidden RevealRank = 0
	RankThird  RevealRank = 3
	RankSecond RevealRank = 2
	RankFirst  RevealRank = 1
)

// Next returns the following reveal step. First is terminal.
func (r RevealRank) Next() RevealRank {
	switch r {
	case RankHidden:
		return RankThird
	case RankThird:
		return RankSecond
	default:
		return RankFirst
	}
}

// Terminal reports whether every podium place has been revealed.
func (r RevealRank) Terminal() bool {
	return r == RankFirst
}

// Shows reports whether a player with the given dense rank is visible at this step.
func (r RevealRank) Shows(rank int) bool {
	if r == RankHidden || rank < 1 {
		return false
	}
	return rank >= int(r) && rank <= int(RankThird)
}
