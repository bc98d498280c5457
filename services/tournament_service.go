package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/Dosada05/kicker-system/brackets"
	"github.com/Dosada05/kicker-system/models"
	"github.com/Dosada05/kicker-system/rating"
	"github.com/Dosada05/kicker-system/repositories"
)

// TournamentService drives the single active tournament. It is not safe for
// concurrent use; callers serialize access.
type TournamentService interface {
	Initialize(ctx context.Context) error
	SelectMode(ctx context.Context, mode models.TournamentMode) error
	StartNewTournament(ctx context.Context, mode models.TournamentMode) error
	Mode() models.TournamentMode

	SetOneOnOne(oneOnOne bool) error
	SetParameters(maxScore, numberOfGames int) error
	LoadParameters(ctx context.Context) error
	Settings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, settings *models.Settings) error

	TogglePlayer(player *models.Player) (bool, error)
	RemovePlayer(name string) error
	IsSignedUp(name string) bool
	IsInProgress() bool
	Player(name string) (*models.Player, error)
	Players() []*models.Player
	Games() []*models.Game
	Snapshot() *models.Tournament

	GenerateRound() ([]*models.Game, error)
	GenerateGame() (*models.Game, error)
	FinalizeGame(position, scoreTeam1, scoreTeam2 int) error
	RecordResult(position, scoreTeam1, scoreTeam2 int) error
	CommitResults() (int, error)
	CommitGame(position int) error
	RevertGame(position int) error
	RemoveGame(position int) error

	GeneratePlayoffs() ([]*models.Game, error)
	Winner() ([]*models.Player, error)
	Finish(ctx context.Context) error

	Persist(ctx context.Context) error
}

// Archiver stores finished tournaments.
type Archiver interface {
	Archive(ctx context.Context, finishedAt time.Time, snapshot []byte) (string, error)
}

type TournamentConfig struct {
	DefaultMode   models.TournamentMode
	MaxScore      int
	NumberOfGames int
	KFactor       float64
	Spread        float64
	Rand          *rand.Rand // nil seeds from the clock
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	settingsRepo   repositories.SettingsRepository
	archiver       Archiver
	calculator     *rating.Calculator
	cfg            TournamentConfig
	logger         *slog.Logger

	tournament *models.Tournament
	matchmaker brackets.Matchmaker
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	settingsRepo repositories.SettingsRepository,
	archiver Archiver,
	cfg TournamentConfig,
	logger *slog.Logger,
) TournamentService {
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = models.ModeMonsterDYP
	}
	if cfg.MaxScore < 1 {
		cfg.MaxScore = models.DefaultMaxScore
	}
	if cfg.NumberOfGames < 1 {
		cfg.NumberOfGames = models.DefaultNumberOfGames
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		settingsRepo:   settingsRepo,
		archiver:       archiver,
		calculator:     rating.NewCalculator(cfg.KFactor),
		cfg:            cfg,
		logger:         logger,
	}
}

// Initialize loads the saved tournament once. A missing or unreadable
// snapshot is not an error: a new tournament in the default mode replaces it.
func (s *tournamentService) Initialize(ctx context.Context) error {
	if s.tournament != nil {
		return nil
	}

	t, err := s.tournamentRepo.Load(ctx)
	if err == nil {
		var mm brackets.Matchmaker
		if mm, err = s.newMatchmaker(t.Mode); err == nil {
			s.tournament, s.matchmaker = t, mm
			s.logger.Info("tournament loaded",
				slog.String("mode", string(t.Mode)),
				slog.Int("games", len(t.Games)),
				slog.Int("players", len(t.SignedUp)))
			return nil
		}
	}

	if errors.Is(err, repositories.ErrTournamentNotFound) {
		s.logger.Info("no saved tournament, starting a new one")
	} else {
		s.logger.Error("failed to load tournament, starting a new one", slog.Any("error", err))
	}
	return s.start(ctx, s.cfg.DefaultMode)
}

// SelectMode creates the tournament when none exists yet.
func (s *tournamentService) SelectMode(ctx context.Context, mode models.TournamentMode) error {
	if s.tournament != nil {
		return ErrTournamentAlreadyStarted
	}
	return s.start(ctx, mode)
}

// StartNewTournament replaces the active tournament.
func (s *tournamentService) StartNewTournament(ctx context.Context, mode models.TournamentMode) error {
	return s.start(ctx, mode)
}

func (s *tournamentService) start(ctx context.Context, mode models.TournamentMode) error {
	mm, err := s.newMatchmaker(mode)
	if err != nil {
		return err
	}

	t := models.NewTournament(mode)
	maxScore, numberOfGames, err := s.loadParameters(ctx)
	if err != nil {
		s.logger.Warn("failed to load settings, using defaults", slog.Any("error", err))
		maxScore, numberOfGames = s.cfg.MaxScore, s.cfg.NumberOfGames
	}
	t.MaxScore, t.NumberOfGames = maxScore, numberOfGames

	s.tournament, s.matchmaker = t, mm
	s.logger.Info("tournament started", slog.String("mode", string(mode)), slog.String("matchmaker", mm.GetName()))
	return nil
}

func (s *tournamentService) newMatchmaker(mode models.TournamentMode) (brackets.Matchmaker, error) {
	return brackets.NewMatchmaker(mode, brackets.Options{Rand: s.cfg.Rand, Spread: s.cfg.Spread})
}

// active returns the tournament, creating one on first access.
func (s *tournamentService) active() *models.Tournament {
	if s.tournament == nil {
		t := models.NewTournament(s.cfg.DefaultMode)
		t.MaxScore, t.NumberOfGames = s.cfg.MaxScore, s.cfg.NumberOfGames
		mm, err := s.newMatchmaker(t.Mode)
		if err != nil {
			s.logger.Error("no matchmaker for default mode", slog.String("mode", string(t.Mode)), slog.Any("error", err))
		}
		s.tournament, s.matchmaker = t, mm
	}
	return s.tournament
}

func (s *tournamentService) mutable() (*models.Tournament, error) {
	t := s.active()
	if t.Finished {
		return nil, ErrTournamentFinished
	}
	return t, nil
}

func (s *tournamentService) Mode() models.TournamentMode {
	return s.active().Mode
}

func (s *tournamentService) SetOneOnOne(oneOnOne bool) error {
	t, err := s.mutable()
	if err != nil {
		return err
	}
	if len(t.Games) > 0 {
		return ErrTournamentInProgress
	}
	t.OneOnOne = oneOnOne
	return nil
}

func (s *tournamentService) SetParameters(maxScore, numberOfGames int) error {
	t, err := s.mutable()
	if err != nil {
		return err
	}
	if maxScore < 1 || numberOfGames < 1 {
		return fmt.Errorf("%w: got max score %d, number of games %d", ErrInvalidParameters, maxScore, numberOfGames)
	}
	t.MaxScore, t.NumberOfGames = maxScore, numberOfGames
	return nil
}

// LoadParameters applies the stored settings to the active tournament.
func (s *tournamentService) LoadParameters(ctx context.Context) error {
	if _, err := s.mutable(); err != nil {
		return err
	}
	maxScore, numberOfGames, err := s.loadParameters(ctx)
	if err != nil {
		return err
	}
	return s.SetParameters(maxScore, numberOfGames)
}

func (s *tournamentService) loadParameters(ctx context.Context) (int, int, error) {
	maxScore, err := s.settingsRepo.LoadMaxScore(ctx)
	if errors.Is(err, repositories.ErrSettingsNotFound) {
		return s.cfg.MaxScore, s.cfg.NumberOfGames, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load max score: %w", err)
	}
	numberOfGames, err := s.settingsRepo.LoadNumberOfGames(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load number of games: %w", err)
	}
	return maxScore, numberOfGames, nil
}

func (s *tournamentService) Settings(ctx context.Context) (*models.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if errors.Is(err, repositories.ErrSettingsNotFound) {
		return &models.Settings{MaxScore: s.cfg.MaxScore, NumberOfGames: s.cfg.NumberOfGames}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings stores the settings and applies them to the active
// tournament unless it is finished.
func (s *tournamentService) UpdateSettings(ctx context.Context, settings *models.Settings) error {
	if settings.MaxScore < 1 || settings.NumberOfGames < 1 {
		return fmt.Errorf("%w: got max score %d, number of games %d", ErrInvalidParameters, settings.MaxScore, settings.NumberOfGames)
	}
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if s.active().Finished {
		return nil
	}
	return s.SetParameters(settings.MaxScore, settings.NumberOfGames)
}

// TogglePlayer signs a player up, or removes them when already signed up.
// It reports whether the player is signed up afterwards.
func (s *tournamentService) TogglePlayer(player *models.Player) (bool, error) {
	t, err := s.mutable()
	if err != nil {
		return false, err
	}
	if player == nil || strings.TrimSpace(player.Name) == "" {
		return false, ErrPlayerNameRequired
	}

	if t.IsSignedUp(player.Name) {
		s.removePlayer(t, player.Name)
		return false, nil
	}

	p, ok := t.RosterPlayer(player.Name)
	if !ok {
		p = player.Clone()
		t.Roster = append(t.Roster, p)
	}
	// Reverting a game committed before this rejoin floors the tournament
	// counters at zero instead of restoring them exactly.
	p.ResetTournamentStats()
	t.SignedUp = append(t.SignedUp, p.Name)
	s.logger.Debug("player signed up", slog.String("player", p.Name))
	return true, nil
}

func (s *tournamentService) RemovePlayer(name string) error {
	t, err := s.mutable()
	if err != nil {
		return err
	}
	if !t.IsSignedUp(name) {
		return fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	s.removePlayer(t, name)
	return nil
}

// removePlayer signs the player off and drops their uncommitted games.
// Committed games stay untouched.
func (s *tournamentService) removePlayer(t *models.Tournament, name string) {
	t.SignedUp = slices.DeleteFunc(t.SignedUp, func(n string) bool { return n == name })
	before := len(t.Games)
	t.Games = slices.DeleteFunc(t.Games, func(g *models.Game) bool {
		return !g.ResultCommitted && g.HasPlayer(name)
	})
	s.logger.Debug("player signed off",
		slog.String("player", name),
		slog.Int("discarded_games", before-len(t.Games)))
}

func (s *tournamentService) IsSignedUp(name string) bool {
	return s.active().IsSignedUp(name)
}

// IsInProgress reports whether any game has been created.
func (s *tournamentService) IsInProgress() bool {
	return len(s.active().Games) > 0
}

func (s *tournamentService) Player(name string) (*models.Player, error) {
	t := s.active()
	if !t.IsSignedUp(name) {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	p, _ := t.RosterPlayer(name)
	return p.Clone(), nil
}

// Players returns the signed-up players ranked for display.
func (s *tournamentService) Players() []*models.Player {
	return rankPlayers(s.active().SignedUpPlayers())
}

func (s *tournamentService) Games() []*models.Game {
	return cloneGames(s.active().Games)
}

func (s *tournamentService) Snapshot() *models.Tournament {
	return s.active().Clone()
}

// Finish closes the tournament for good and archives it when an archiver is
// configured. Archive failures are logged only.
func (s *tournamentService) Finish(ctx context.Context) error {
	t, err := s.mutable()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	t.Finished = true
	t.FinishedAt = &now
	s.logger.Info("tournament finished", slog.Int("games", len(t.Games)))

	if s.archiver == nil {
		return nil
	}
	snapshot, err := t.ToJSON()
	if err != nil {
		s.logger.Error("failed to encode finished tournament", slog.Any("error", err))
		return nil
	}
	location, err := s.archiver.Archive(ctx, now, snapshot)
	if err != nil {
		s.logger.Error("failed to archive finished tournament", slog.Any("error", err))
		return nil
	}
	s.logger.Info("tournament archived", slog.String("location", location))
	return nil
}

// Persist saves the snapshot and writes the roster's lifetime stats back to
// the player registry.
func (s *tournamentService) Persist(ctx context.Context) error {
	snapshot := s.Snapshot()
	if err := s.tournamentRepo.Save(ctx, snapshot); err != nil {
		return err
	}
	if err := s.playerRepo.Upsert(ctx, snapshot.Roster); err != nil {
		return fmt.Errorf("failed to sync roster: %w", err)
	}
	return nil
}
