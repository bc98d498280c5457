package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// TournamentMode selects the matchmaking engine.
type TournamentMode string

const (
	ModeMonsterDYP TournamentMode = "MONSTERDYP"
)

const (
	DefaultMaxScore      = 10
	DefaultNumberOfGames = 1
)

// Tournament is the serializable snapshot of the active tournament.
type Tournament struct {
	Mode          TournamentMode `json:"mode"`
	OneOnOne      bool           `json:"one_on_one"`
	MaxScore      int            `json:"max_score"`
	NumberOfGames int            `json:"number_of_games"`

	Games []*Game `json:"games"`

	// Roster holds every player that ever took part, including players who
	// left, so committed history stays resolvable.
	Roster   []*Player `json:"roster"`
	SignedUp []string  `json:"signed_up"`

	SemiFinalsGenerated bool       `json:"semi_finals_generated"`
	FinalGenerated      bool       `json:"final_generated"`
	Finished            bool       `json:"finished"`
	FinishedAt          *time.Time `json:"finished_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// NewTournament returns an empty tournament in the given mode.
func NewTournament(mode TournamentMode) *Tournament {
	return &Tournament{
		Mode:          mode,
		MaxScore:      DefaultMaxScore,
		NumberOfGames: DefaultNumberOfGames,
		Games:         []*Game{},
		Roster:        []*Player{},
		SignedUp:      []string{},
		CreatedAt:     time.Now().UTC(),
	}
}

// TeamSize is 1 for one-on-one and 2 otherwise.
func (t *Tournament) TeamSize() int {
	if t.OneOnOne {
		return 1
	}
	return 2
}

// RosterPlayer finds a player in the roster, signed up or not.
func (t *Tournament) RosterPlayer(name string) (*Player, bool) {
	for _, p := range t.Roster {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

func (t *Tournament) IsSignedUp(name string) bool {
	return slices.Contains(t.SignedUp, name)
}

// SignedUpPlayers returns the signed-up players in sign-up order.
func (t *Tournament) SignedUpPlayers() []*Player {
	players := make([]*Player, 0, len(t.SignedUp))
	for _, name := range t.SignedUp {
		if p, ok := t.RosterPlayer(name); ok {
			players = append(players, p)
		}
	}
	return players
}

// Clone returns a deep copy of the tournament.
func (t *Tournament) Clone() *Tournament {
	c := *t
	c.Games = make([]*Game, len(t.Games))
	for i, g := range t.Games {
		c.Games[i] = g.Clone()
	}
	c.Roster = make([]*Player, len(t.Roster))
	for i, p := range t.Roster {
		c.Roster[i] = p.Clone()
	}
	c.SignedUp = slices.Clone(t.SignedUp)
	if t.FinishedAt != nil {
		at := *t.FinishedAt
		c.FinishedAt = &at
	}
	return &c
}

func (t *Tournament) ToJSON() ([]byte, error) {
	return json.Marshal(t)
}

// TournamentFromJSON decodes a snapshot and fills defaults for fields an
// older snapshot may lack.
func TournamentFromJSON(data []byte) (*Tournament, error) {
	var t Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament: %w", err)
	}
	if t.MaxScore <= 0 {
		t.MaxScore = DefaultMaxScore
	}
	if t.NumberOfGames <= 0 {
		t.NumberOfGames = DefaultNumberOfGames
	}
	if t.Games == nil {
		t.Games = []*Game{}
	}
	if t.Roster == nil {
		t.Roster = []*Player{}
	}
	if t.SignedUp == nil {
		t.SignedUp = []string{}
	}
	return &t, nil
}
