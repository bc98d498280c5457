package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/kicker-system/models"
	"github.com/Dosada05/kicker-system/rating"
	"github.com/Dosada05/kicker-system/repositories"
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, name string) (*models.Player, error)
	GetPlayer(ctx context.Context, name string) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
}

type playerService struct {
	repo          repositories.PlayerRepository
	defaultRating float64
	logger        *slog.Logger
}

func NewPlayerService(repo repositories.PlayerRepository, defaultRating float64, logger *slog.Logger) PlayerService {
	if defaultRating <= 0 {
		defaultRating = rating.DefaultRating
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &playerService{repo: repo, defaultRating: defaultRating, logger: logger}
}

func (s *playerService) CreatePlayer(ctx context.Context, name string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	player := models.NewPlayer(name, s.defaultRating)
	if err := s.repo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNameConflict) {
			return nil, fmt.Errorf("%w: %q", ErrPlayerNameConflict, name)
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	s.logger.Info("player created", slog.String("player", name))
	return player, nil
}

func (s *playerService) GetPlayer(ctx context.Context, name string) (*models.Player, error) {
	player, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	if players == nil {
		return []*models.Player{}, nil
	}
	return players, nil
}
