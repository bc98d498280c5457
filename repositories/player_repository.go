package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/kicker-system/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerNameConflict = errors.New("player name conflict")
)

// PlayerRepository is the lifetime player registry. Tournament-scoped
// counters are never stored here.
type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByName(ctx context.Context, name string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	Upsert(ctx context.Context, players []*models.Player) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `name, won_games, lost_games, tied_games, goals_shot, goals_received, rating, rating_delta, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (name, won_games, lost_games, tied_games, goals_shot, goals_received, rating, rating_delta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.WonGames, p.LostGames, p.TiedGames, p.GoalsShot, p.GoalsReceived, p.Rating, p.RatingDelta,
	).Scan(&p.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return ErrPlayerNameConflict
		}
		return fmt.Errorf("failed to create player %q: %w", p.Name, err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByName(ctx context.Context, name string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE name = $1`

	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %q: %w", name, err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, scanErr := scanPlayer(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan player: %w", scanErr)
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

// Upsert writes the lifetime stats of every player in one transaction.
func (r *postgresPlayerRepository) Upsert(ctx context.Context, players []*models.Player) (err error) {
	if len(players) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO players (name, won_games, lost_games, tied_games, goals_shot, goals_received, rating, rating_delta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			won_games = EXCLUDED.won_games,
			lost_games = EXCLUDED.lost_games,
			tied_games = EXCLUDED.tied_games,
			goals_shot = EXCLUDED.goals_shot,
			goals_received = EXCLUDED.goals_received,
			rating = EXCLUDED.rating,
			rating_delta = EXCLUDED.rating_delta`

	for _, p := range players {
		if err = upsertPlayer(ctx, tx, query, p); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit player upsert: %w", err)
	}
	return nil
}

func upsertPlayer(ctx context.Context, exec SQLExecutor, query string, p *models.Player) error {
	_, err := exec.ExecContext(ctx, query,
		p.Name, p.WonGames, p.LostGames, p.TiedGames, p.GoalsShot, p.GoalsReceived, p.Rating, p.RatingDelta)
	if err != nil {
		return fmt.Errorf("failed to upsert player %q: %w", p.Name, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.Name, &p.WonGames, &p.LostGames, &p.TiedGames, &p.GoalsShot, &p.GoalsReceived,
		&p.Rating, &p.RatingDelta, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
