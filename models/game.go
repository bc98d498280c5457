package models

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

type GameStage string

const (
	StageRegular   GameStage = "regular"
	StageSemiFinal GameStage = "semifinal"
	StageFinal     GameStage = "final"
)

// Game stores player names only; the players themselves live in Tournament.Roster.
type Game struct {
	ID    uuid.UUID `json:"id"`
	Stage GameStage `json:"stage"`

	Team1 []string `json:"team1"`
	Team2 []string `json:"team2"`

	ScoreTeam1      int  `json:"score_team1"`
	ScoreTeam2      int  `json:"score_team2"`
	Finished        bool `json:"finished"`
	ResultCommitted bool `json:"result_committed"`

	// Rating deltas applied at commit time, keyed by player name.
	RatingDeltas map[string]float64 `json:"rating_deltas,omitempty"`
}

// NewGame builds a pending game. Both teams must be non-empty, equally
// sized and disjoint.
func NewGame(stage GameStage, team1, team2 []string) (*Game, error) {
	if len(team1) == 0 || len(team1) != len(team2) {
		return nil, fmt.Errorf("%w: teams must be non-empty and of equal size (got %d and %d)",
			ErrInvalidArgument, len(team1), len(team2))
	}
	for _, name := range team1 {
		if slices.Contains(team2, name) {
			return nil, fmt.Errorf("%w: player %q cannot play on both teams", ErrInvalidArgument, name)
		}
	}
	return &Game{
		ID:    uuid.New(),
		Stage: stage,
		Team1: slices.Clone(team1),
		Team2: slices.Clone(team2),
	}, nil
}

func (g *Game) IsOneOnOne() bool {
	return len(g.Team1) == 1
}

// Participants returns team1 followed by team2.
func (g *Game) Participants() []string {
	return append(slices.Clone(g.Team1), g.Team2...)
}

func (g *Game) HasPlayer(name string) bool {
	return slices.Contains(g.Team1, name) || slices.Contains(g.Team2, name)
}

// SameMatchup reports whether both games were played by the same two teams
// in the same order.
func (g *Game) SameMatchup(other *Game) bool {
	return slices.Equal(g.Team1, other.Team1) && slices.Equal(g.Team2, other.Team2)
}

// Clone returns a deep copy.
func (g *Game) Clone() *Game {
	c := *g
	c.Team1 = slices.Clone(g.Team1)
	c.Team2 = slices.Clone(g.Team2)
	if g.RatingDeltas != nil {
		c.RatingDeltas = make(map[string]float64, len(g.RatingDeltas))
		for k, v := range g.RatingDeltas {
			c.RatingDeltas[k] = v
		}
	}
	return &c
}

func (g *Game) ToJSON() ([]byte, error) {
	return json.Marshal(g)
}

func GameFromJSON(data []byte) (*Game, error) {
	var g Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to decode game: %w", err)
	}
	return &g, nil
}
