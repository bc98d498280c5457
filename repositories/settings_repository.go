package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/kicker-system/models"
)

var ErrSettingsNotFound = errors.New("settings not found")

// SettingsRepository holds the user-editable tournament parameters.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	LoadMaxScore(ctx context.Context) (int, error)
	LoadNumberOfGames(ctx context.Context) (int, error)
	Save(ctx context.Context, settings *models.Settings) error
}

type postgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) SettingsRepository {
	return &postgresSettingsRepository{db: db}
}

func (r *postgresSettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	query := `SELECT max_score, number_of_games, updated_at FROM settings WHERE id = 1`

	var s models.Settings
	err := r.db.QueryRowContext(ctx, query).Scan(&s.MaxScore, &s.NumberOfGames, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &s, nil
}

func (r *postgresSettingsRepository) LoadMaxScore(ctx context.Context) (int, error) {
	return r.loadInt(ctx, `SELECT max_score FROM settings WHERE id = 1`)
}

func (r *postgresSettingsRepository) LoadNumberOfGames(ctx context.Context) (int, error) {
	return r.loadInt(ctx, `SELECT number_of_games FROM settings WHERE id = 1`)
}

func (r *postgresSettingsRepository) loadInt(ctx context.Context, query string) (int, error) {
	var value int
	if err := r.db.QueryRowContext(ctx, query).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrSettingsNotFound
		}
		return 0, fmt.Errorf("failed to load setting: %w", err)
	}
	return value, nil
}

func (r *postgresSettingsRepository) Save(ctx context.Context, s *models.Settings) error {
	query := `
		INSERT INTO settings (id, max_score, number_of_games, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			max_score = EXCLUDED.max_score,
			number_of_games = EXCLUDED.number_of_games,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at`

	if err := r.db.QueryRowContext(ctx, query, s.MaxScore, s.NumberOfGames).Scan(&s.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
