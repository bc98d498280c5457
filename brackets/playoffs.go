package brackets

import (
	"fmt"

	"github.com/Dosada05/kicker-system/models"
)

// Matchup is one pairing of two teams.
type Matchup struct {
	Team1 []string
	Team2 []string
}

// MinPlayersForSemiFinals is the smallest pool that gets semifinals instead
// of a direct final.
func MinPlayersForSemiFinals(oneOnOne bool) int {
	return 4 * teamSizeFor(oneOnOne)
}

// SemiFinalMatchups cross-seeds the ranked players into two semifinals.
// One-on-one: p1 vs p4 and p2 vs p3. Teams: {p1,p5} vs {p4,p8} and
// {p2,p6} vs {p3,p7}. Players past the bracket size are ignored.
func SemiFinalMatchups(ranked []*models.Player, oneOnOne bool) (Matchup, Matchup, error) {
	need := MinPlayersForSemiFinals(oneOnOne)
	if len(ranked) < need {
		return Matchup{}, Matchup{}, fmt.Errorf("%w: semifinals need %d players, found %d", ErrNotEnoughPlayers, need, len(ranked))
	}
	p := names(ranked[:need])
	if oneOnOne {
		return Matchup{Team1: []string{p[0]}, Team2: []string{p[3]}},
			Matchup{Team1: []string{p[1]}, Team2: []string{p[2]}},
			nil
	}
	return Matchup{Team1: []string{p[0], p[4]}, Team2: []string{p[3], p[7]}},
		Matchup{Team1: []string{p[1], p[5]}, Team2: []string{p[2], p[6]}},
		nil
}

// Games expands a matchup into n consecutive games of the given stage.
func (m Matchup) Games(stage models.GameStage, n int) ([]*models.Game, error) {
	games := make([]*models.Game, 0, n)
	for range n {
		g, err := models.NewGame(stage, m.Team1, m.Team2)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, nil
}
