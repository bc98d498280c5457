package models

import "time"

// Settings are the user-editable tournament parameters.
type Settings struct {
	MaxScore      int       `json:"max_score" db:"max_score"`
	NumberOfGames int       `json:"number_of_games" db:"number_of_games"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
