package app

import (
	"sort"

	"live-quiz-service/internal/domain"
)

// DenseRanks orders players by score and assigns dense ranks: equal scores share
// a rank and the next distinct score takes the next integer.
func DenseRanks(players []domain.Player) []domain.Standing {
	sorted := make([]domain.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Name < sorted[j].Name
	})

	standings := make([]domain.Standing, 0, len(sorted))
	rank := 0
	for i, p := range sorted {
		if i == 0 || p.Score != sorted[i-1].Score {
			rank++
		}
		standings = append(standings, domain.Standing{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
			Rank:     rank,
		})
	}
	return standings
}

// RevealedStandings returns the podium players visible at the given reveal step.
// Revealing second shows ranks 3 and 2; first shows the whole podium.
func RevealedStandings(players []domain.Player, revealed domain.RevealRank) []domain.Standing {
	all := DenseRanks(players)
	visible := make([]domain.Standing, 0, len(all))
	for _, s := range all {
		if revealed.Shows(s.Rank) {
			visible = append(visible, s)
		}
	}
	return visible
}

// RankOf returns the dense rank of playerID, or 0 when the player is absent.
func RankOf(players []domain.Player, playerID string) int {
	for _, s := range DenseRanks(players) {
		if s.PlayerID == playerID {
			return s.Rank
		}
	}
	return 0
}
