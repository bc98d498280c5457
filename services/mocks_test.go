package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/kicker-system/models"
	"github.com/stretchr/testify/mock"
)

type mockTournamentRepo struct {
	mock.Mock
}

func (m *mockTournamentRepo) Load(ctx context.Context) (*models.Tournament, error) {
	args := m.Called(ctx)
	t, _ := args.Get(0).(*models.Tournament)
	return t, args.Error(1)
}

func (m *mockTournamentRepo) Save(ctx context.Context, t *models.Tournament) error {
	return m.Called(ctx, t).Error(0)
}

type mockPlayerRepo struct {
	mock.Mock
}

func (m *mockPlayerRepo) Create(ctx context.Context, p *models.Player) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPlayerRepo) GetByName(ctx context.Context, name string) (*models.Player, error) {
	args := m.Called(ctx, name)
	p, _ := args.Get(0).(*models.Player)
	return p, args.Error(1)
}

func (m *mockPlayerRepo) List(ctx context.Context) ([]*models.Player, error) {
	args := m.Called(ctx)
	players, _ := args.Get(0).([]*models.Player)
	return players, args.Error(1)
}

func (m *mockPlayerRepo) Upsert(ctx context.Context, players []*models.Player) error {
	return m.Called(ctx, players).Error(0)
}

type mockSettingsRepo struct {
	mock.Mock
}

func (m *mockSettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*models.Settings)
	return s, args.Error(1)
}

func (m *mockSettingsRepo) LoadMaxScore(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockSettingsRepo) LoadNumberOfGames(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockSettingsRepo) Save(ctx context.Context, s *models.Settings) error {
	return m.Called(ctx, s).Error(0)
}

type mockArchiver struct {
	mock.Mock
}

func (m *mockArchiver) Archive(ctx context.Context, finishedAt time.Time, snapshot []byte) (string, error) {
	args := m.Called(ctx, finishedAt, snapshot)
	return args.String(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
