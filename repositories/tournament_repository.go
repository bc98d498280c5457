package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/kicker-system/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

// TournamentRepository stores the snapshot of the single active tournament.
type TournamentRepository interface {
	Load(ctx context.Context) (*models.Tournament, error)
	Save(ctx context.Context, tournament *models.Tournament) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Load(ctx context.Context) (*models.Tournament, error) {
	query := `SELECT snapshot FROM active_tournament WHERE id = 1`

	var snapshot []byte
	err := r.db.QueryRowContext(ctx, query).Scan(&snapshot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament snapshot: %w", err)
	}
	return models.TournamentFromJSON(snapshot)
}

func (r *postgresTournamentRepository) Save(ctx context.Context, tournament *models.Tournament) error {
	snapshot, err := tournament.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode tournament snapshot: %w", err)
	}

	query := `
		INSERT INTO active_tournament (id, snapshot, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, snapshot); err != nil {
		return fmt.Errorf("failed to save tournament snapshot: %w", err)
	}
	return nil
}
