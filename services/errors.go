package services

import (
	"fmt"

	"github.com/Dosada05/kicker-system/models"
)

// Orchestrator errors. Each wraps one of the error kinds from models, which
// handlers use to pick the HTTP status.
var (
	// InvalidState
	ErrTournamentFinished       = fmt.Errorf("%w: tournament is already finished", models.ErrInvalidState)
	ErrTournamentAlreadyStarted = fmt.Errorf("%w: tournament is already initialized", models.ErrInvalidState)
	ErrTournamentInProgress     = fmt.Errorf("%w: games were already created", models.ErrInvalidState)
	ErrPlayoffsStarted          = fmt.Errorf("%w: playoffs have already started", models.ErrInvalidState)
	ErrFinalAlreadyGenerated    = fmt.Errorf("%w: final was already generated", models.ErrInvalidState)
	ErrSemiFinalsMalformed      = fmt.Errorf("%w: semifinal games do not form two matchups", models.ErrInvalidState)
	ErrPlayerNameConflict       = fmt.Errorf("%w: player name is already taken", models.ErrInvalidState)

	// InvalidArgument
	ErrInvalidPosition    = fmt.Errorf("%w: no game at this position", models.ErrInvalidArgument)
	ErrInvalidScore       = fmt.Errorf("%w: score out of range", models.ErrInvalidArgument)
	ErrMaxScoreNotReached = fmt.Errorf("%w: one team has to reach the max score", models.ErrInvalidArgument)
	ErrInvalidParameters  = fmt.Errorf("%w: max score and number of games must be at least 1", models.ErrInvalidArgument)
	ErrPlayerNameRequired = fmt.Errorf("%w: player name is required", models.ErrInvalidArgument)

	// PreconditionViolation
	ErrGameNotFinished       = fmt.Errorf("%w: game is not finished", models.ErrPreconditionViolation)
	ErrGameCommitted         = fmt.Errorf("%w: game result is already committed", models.ErrPreconditionViolation)
	ErrGameNotCommitted      = fmt.Errorf("%w: game result is not committed", models.ErrPreconditionViolation)
	ErrSemiFinalsNotFinished = fmt.Errorf("%w: semifinal games are not finished", models.ErrPreconditionViolation)
	ErrFinalNotGenerated     = fmt.Errorf("%w: final has not been generated", models.ErrPreconditionViolation)
	ErrFinalNotFinished      = fmt.Errorf("%w: final games are not finished", models.ErrPreconditionViolation)

	// LookupFailure
	ErrPlayerNotFound = fmt.Errorf("%w: player not found", models.ErrLookupFailure)

	// AmbiguousOutcome
	ErrNoDistinctWinner = fmt.Errorf("%w: no winner can be determined", models.ErrAmbiguousOutcome)
)
