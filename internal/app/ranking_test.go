package app_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

func podium() []domain.Player {
	return []domain.Player{
		{ID: "c", Name: "Carol", Score: 1},
		{ID: "a", Name: "Alice", Score: 3},
		{ID: "d", Name: "Dave", Score: 0},
		{ID: "b", Name: "Bob", Score: 3},
		{ID: "e", Name: "Eve", Score: 1},
	}
}

func TestDenseRanksShareTies(t *testing.T) {
	standings := app.DenseRanks(podium())

	got := make(map[string]int, len(standings))
	for _, s := range standings {
		got[s.Name] = s.Rank
	}
	require.Equal(t, map[string]int{"Alice": 1, "Bob": 1, "Carol": 2, "Eve": 2, "Dave": 3}, got)
	require.Equal(t, "Alice", standings[0].Name)
	require.Equal(t, "Dave", standings[len(standings)-1].Name)
}

func TestRevealedStandingsSequence(t *testing.T) {
	players := podium()

	require.Empty(t, app.RevealedStandings(players, domain.RankHidden))

	third := app.RevealedStandings(players, domain.RankThird)
	require.Len(t, third, 1)
	require.Equal(t, "Dave", third[0].Name)

	second := app.RevealedStandings(players, domain.RankSecond)
	require.Equal(t, []string{"Carol", "Eve", "Dave"}, names(second))

	first := app.RevealedStandings(players, domain.RankFirst)
	require.Equal(t, []string{"Alice", "Bob", "Carol", "Eve", "Dave"}, names(first))
}

func TestRevealedStandingsExcludesBelowPodium(t *testing.T) {
	players := append(podium(), domain.Player{ID: "f", Name: "Frank", Score: -1})
	for _, s := range app.RevealedStandings(players, domain.RankFirst) {
		require.NotEqual(t, "Frank", s.Name)
	}
}

func TestRankOf(t *testing.T) {
	players := podium()
	require.Equal(t, 1, app.RankOf(players, "b"))
	require.Equal(t, 3, app.RankOf(players, "d"))
	require.Equal(t, 0, app.RankOf(players, "nobody"))
}

func TestRevealRankSteps(t *testing.T) {
	r := domain.RankHidden
	var seen []domain.RevealRank
	for i := 0; i < 4; i++ {
		r = r.Next()
		seen = append(seen, r)
	}
	require.Equal(t, []domain.RevealRank{domain.RankThird, domain.RankSecond, domain.RankFirst, domain.RankFirst}, seen)
	require.True(t, domain.RankFirst.Terminal())
}

func names(standings []domain.Standing) []string {
	out := make([]string, 0, len(standings))
	for _, s := range standings {
		out = append(out, s.Name)
	}
	return out
}

func TestRevealTiedLeaders(t *testing.T) {
	players := []domain.Player{
		{ID: "a", Name: "Alice", Score: 3},
		{ID: "b", Name: "Bob", Score: 3},
		{ID: "c", Name: "Carol", Score: 1},
	}
	require.Empty(t, app.RevealedStandings(players, domain.RankThird))
	require.Equal(t, []string{"Carol"}, names(app.RevealedStandings(players, domain.RankSecond)))
	require.Equal(t, []string{"Alice", "Bob", "Carol"}, names(app.RevealedStandings(players, domain.RankFirst)))
}
