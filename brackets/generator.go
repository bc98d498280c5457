package brackets

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/Dosada05/kicker-system/models"
)

var (
	ErrNotEnoughPlayers = fmt.Errorf("%w: not enough players for a full matchup", models.ErrInvalidArgument)
	ErrModeNotSet       = fmt.Errorf("%w: tournament mode was not set, cannot create games", models.ErrConfigurationMissing)
	ErrUnsupportedMode  = fmt.Errorf("%w: tournament mode is not supported", models.ErrInvalidArgument)
)

// Matchmaker produces games from the signed-up players of a tournament.
// Implementations are pure: they never mutate the players or games passed in.
type Matchmaker interface {
	// GenerateRound creates as many games as the players allow.
	GenerateRound(players []*models.Player, oneOnOne bool, games []*models.Game) ([]*models.Game, error)
	// GenerateGame creates exactly one game.
	GenerateGame(players []*models.Player, oneOnOne bool, games []*models.Game) (*models.Game, error)
	// GenerateTeam forms one team anchored on pool[0].
	GenerateTeam(pool []*models.Player, teamSize int) ([]*models.Player, error)

	GetName() string
}

type Options struct {
	Rand   *rand.Rand
	Spread float64 // sigma of the teammate weighting, in rating points
}

type factory func(opts Options) Matchmaker

var registry = map[models.TournamentMode]factory{
	models.ModeMonsterDYP: func(opts Options) Matchmaker {
		return NewMonsterDypMatchmaker(opts.Rand, opts.Spread)
	},
}

// NewMatchmaker resolves the matchmaking engine for a tournament mode.
func NewMatchmaker(mode models.TournamentMode, opts Options) (Matchmaker, error) {
	if mode == "" {
		return nil, ErrModeNotSet
	}
	create, ok := registry[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedMode, mode, SupportedModes())
	}
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		opts.Rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return create(opts), nil
}

// SupportedModes lists the modes that have a matchmaking engine.
func SupportedModes() []models.TournamentMode {
	modes := make([]models.TournamentMode, 0, len(registry))
	for mode := range registry {
		modes = append(modes, mode)
	}
	slices.Sort(modes)
	return modes
}

func teamSizeFor(oneOnOne bool) int {
	if oneOnOne {
		return 1
	}
	return 2
}
