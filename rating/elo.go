package rating

import "math"

const (
	DefaultRating  = 1200.0
	DefaultKFactor = 32.0
	scale          = 400.0
)

// Participant is a player's rating before a game.
type Participant struct {
	Name   string
	Rating float64
}

// Update is the new rating of a participant and the delta that produced it.
type Update struct {
	Name      string
	NewRating float64
	Delta     float64
}

// Calculator computes Elo updates for team games. Only win, loss or tie
// matters; the goal margin does not.
type Calculator struct {
	k float64
}

func NewCalculator(kFactor float64) *Calculator {
	if kFactor <= 0 {
		kFactor = DefaultKFactor
	}
	return &Calculator{k: kFactor}
}

func (c *Calculator) KFactor() float64 {
	return c.k
}

// TeamRating is the arithmetic mean of the members' ratings.
func TeamRating(team []Participant) float64 {
	if len(team) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range team {
		sum += p.Rating
	}
	return sum / float64(len(team))
}

// ExpectedScore returns the expected outcome of a team rated `rating`
// against a team rated `opponent`.
func ExpectedScore(rating, opponent float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponent-rating)/scale))
}

// ActualScore maps a result to 1, 0.5 or 0 from the first side's view.
func ActualScore(score, opponentScore int) float64 {
	switch {
	case score > opponentScore:
		return 1.0
	case score < opponentScore:
		return 0.0
	default:
		return 0.5
	}
}

// Calculate returns an update for every participant of a game. The same
// delta is applied to every member of a team. The caller is responsible for
// the game being finished.
func (c *Calculator) Calculate(team1, team2 []Participant, scoreTeam1, scoreTeam2 int) []Update {
	rating1 := TeamRating(team1)
	rating2 := TeamRating(team2)

	delta1 := c.k * (ActualScore(scoreTeam1, scoreTeam2) - ExpectedScore(rating1, rating2))
	delta2 := c.k * (ActualScore(scoreTeam2, scoreTeam1) - ExpectedScore(rating2, rating1))

	updates := make([]Update, 0, len(team1)+len(team2))
	for _, p := range team1 {
		updates = append(updates, Update{Name: p.Name, NewRating: p.Rating + delta1, Delta: delta1})
	}
	for _, p := range team2 {
		updates = append(updates, Update{Name: p.Name, NewRating: p.Rating + delta2, Delta: delta2})
	}
	return updates
}

// Revert returns the rating before a delta was applied. The stored delta
// must be cleared by the caller afterwards so it cannot be reverted twice.
func Revert(current, delta float64) float64 {
	return current - delta
}
