package models

import "time"

// Player is a registered player. The name is unique and serves as the key.
type Player struct {
	Name string `json:"name" db:"name"`

	// Lifetime stats.
	WonGames      int     `json:"won_games" db:"won_games"`
	LostGames     int     `json:"lost_games" db:"lost_games"`
	TiedGames     int     `json:"tied_games" db:"tied_games"`
	GoalsShot     int     `json:"goals_shot" db:"goals_shot"`
	GoalsReceived int     `json:"goals_received" db:"goals_received"`
	Rating        float64 `json:"rating" db:"rating"`
	RatingDelta   float64 `json:"rating_delta" db:"rating_delta"` // delta of the most recently committed game

	// Tournament-scoped stats, reset whenever the player (re)joins.
	WonGamesInTournament      int `json:"won_games_in_tournament" db:"-"`
	LostGamesInTournament     int `json:"lost_games_in_tournament" db:"-"`
	TiedGamesInTournament     int `json:"tied_games_in_tournament" db:"-"`
	GoalsShotInTournament     int `json:"goals_shot_in_tournament" db:"-"`
	GoalsReceivedInTournament int `json:"goals_received_in_tournament" db:"-"`

	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
}

// NewPlayer returns a player with no games and the given starting rating.
func NewPlayer(name string, rating float64) *Player {
	return &Player{Name: name, Rating: rating}
}

func (p *Player) PlayedGamesInTournament() int {
	return p.WonGamesInTournament + p.LostGamesInTournament + p.TiedGamesInTournament
}

// WinRateInTournament is won/played within the current tournament, 0 without games.
func (p *Player) WinRateInTournament() float64 {
	played := p.PlayedGamesInTournament()
	if played == 0 {
		return 0
	}
	return float64(p.WonGamesInTournament) / float64(played)
}

func (p *Player) GoalDifferenceInTournament() int {
	return p.GoalsShotInTournament - p.GoalsReceivedInTournament
}

// ResetTournamentStats zeroes the tournament-scoped counters.
func (p *Player) ResetTournamentStats() {
	p.WonGamesInTournament = 0
	p.LostGamesInTournament = 0
	p.TiedGamesInTournament = 0
	p.GoalsShotInTournament = 0
	p.GoalsReceivedInTournament = 0
}

// Equal reports whether both players carry the same name.
func (p *Player) Equal(other *Player) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Name == other.Name
}

// Clone returns a copy that shares nothing with p.
func (p *Player) Clone() *Player {
	c := *p
	return &c
}
