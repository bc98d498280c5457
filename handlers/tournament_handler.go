package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Dosada05/kicker-system/brackets"
	"github.com/Dosada05/kicker-system/models"
	"github.com/Dosada05/kicker-system/services"
)

// TournamentView is the tournament as the clients see it.
type TournamentView struct {
	Mode                models.TournamentMode `json:"mode"`
	OneOnOne            bool                  `json:"one_on_one"`
	MaxScore            int                   `json:"max_score"`
	NumberOfGames       int                   `json:"number_of_games"`
	SemiFinalsGenerated bool                  `json:"semi_finals_generated"`
	FinalGenerated      bool                  `json:"final_generated"`
	Finished            bool                  `json:"finished"`
	FinishedAt          *time.Time            `json:"finished_at,omitempty"`
	Players             []*models.Player      `json:"players"`
	Games               []*models.Game        `json:"games"`
}

type startTournamentInput struct {
	Mode models.TournamentMode `json:"mode"`
}

type parametersInput struct {
	MaxScore      int `json:"max_score"`
	NumberOfGames int `json:"number_of_games"`
}

type oneOnOneInput struct {
	OneOnOne bool `json:"one_on_one"`
}

type scoreInput struct {
	ScoreTeam1 int `json:"score_team1"`
	ScoreTeam2 int `json:"score_team2"`
}

// TournamentHandler serializes every request touching the active tournament
// through one mutex. Successful mutations are persisted and broadcast.
type TournamentHandler struct {
	mu                sync.Mutex
	tournamentService services.TournamentService
	playerService     services.PlayerService
	hub               *brackets.Hub
	logger            *slog.Logger
}

func NewTournamentHandler(ts services.TournamentService, ps services.PlayerService, hub *brackets.Hub, logger *slog.Logger) *TournamentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TournamentHandler{
		tournamentService: ts,
		playerService:     ps,
		hub:               hub,
		logger:            logger,
	}
}

// view must be called with h.mu held.
func (h *TournamentHandler) view() TournamentView {
	t := h.tournamentService.Snapshot()
	return TournamentView{
		Mode:                t.Mode,
		OneOnOne:            t.OneOnOne,
		MaxScore:            t.MaxScore,
		NumberOfGames:       t.NumberOfGames,
		SemiFinalsGenerated: t.SemiFinalsGenerated,
		FinalGenerated:      t.FinalGenerated,
		Finished:            t.Finished,
		FinishedAt:          t.FinishedAt,
		Players:             h.tournamentService.Players(),
		Games:               t.Games,
	}
}

// CurrentView returns the tournament view under the lock.
func (h *TournamentHandler) CurrentView() TournamentView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.view()
}

// read runs fn under the lock and writes its result.
func (h *TournamentHandler) read(w http.ResponseWriter, r *http.Request, fn func() (interface{}, error)) {
	h.mu.Lock()
	result, err := fn()
	h.mu.Unlock()

	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// mutate runs fn under the lock; on success the tournament is persisted,
// broadcast with messageType and fn's result is written with status.
func (h *TournamentHandler) mutate(w http.ResponseWriter, r *http.Request, status int, messageType string, fn func(ctx context.Context) (interface{}, error)) {
	h.mu.Lock()
	result, err := fn(r.Context())
	if err != nil {
		h.mu.Unlock()
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if persistErr := h.tournamentService.Persist(r.Context()); persistErr != nil {
		h.logger.ErrorContext(r.Context(), "failed to persist tournament", slog.Any("error", persistErr))
	}
	view := h.view()
	h.mu.Unlock()

	if h.hub != nil {
		h.hub.BroadcastToRoom(brackets.TournamentRoom, brackets.WebSocketMessage{
			Type:    messageType,
			Payload: view,
			RoomID:  brackets.TournamentRoom,
		})
	}
	if result == nil {
		result = jsonResponse{"tournament": view}
	}
	if err := writeJSON(w, status, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	h.read(w, r, func() (interface{}, error) {
		return jsonResponse{"tournament": h.view()}, nil
	})
}

func (h *TournamentHandler) StartTournament(w http.ResponseWriter, r *http.Request) {
	var input startTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.mutate(w, r, http.StatusCreated, brackets.MessageTournamentStarted, func(ctx context.Context) (interface{}, error) {
		return nil, h.tournamentService.StartNewTournament(ctx, input.Mode)
	})
}

func (h *TournamentHandler) SetParameters(w http.ResponseWriter, r *http.Request) {
	var input parametersInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.mutate(w, r, http.StatusOK, brackets.MessageTournamentUpdated, func(context.Context) (interface{}, error) {
		return nil, h.tournamentService.SetParameters(input.MaxScore, input.NumberOfGames)
	})
}

func (h *TournamentHandler) SetOneOnOne(w http.ResponseWriter, r *http.Request) {
	var input oneOnOneInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.mutate(w, r, http.StatusOK, brackets.MessageTournamentUpdated, func(context.Context) (interface{}, error) {
		return nil, h.tournamentService.SetOneOnOne(input.OneOnOne)
	})
}

func (h *TournamentHandler) TogglePlayer(w http.ResponseWriter, r *http.Request) {
	name, err := getNameFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	player, err := h.playerService.GetPlayer(r.Context(), name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.mutate(w, r, http.StatusOK, brackets.MessageTournamentUpdated, func(context.Context) (interface{}, error) {
		signedUp, err := h.tournamentService.TogglePlayer(player)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"player": player.Name, "signed_up": signedUp}, nil
	})
}

func (h *TournamentHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	name, err := getNameFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.mutate(w, r, http.StatusOK, brackets.MessageTournamentUpdated, func(context.Context) (interface{}, error) {
		return nil, h.tournamentService.RemovePlayer(name)
	})
}

func (h *TournamentHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	name, err := getNameFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.read(w, r, func() (interface{}, error) {
		player, err := h.tournamentService.Player(name)
		if err != nil {
			return nil, err
		}
		return jsonResponse{"player": player}, nil
	})
}

func (h *TournamentHandler) GenerateRound(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusCreated, brackets.MessageTournamentUpdated, func(context.Context) (interface{}, error) {
		games, err := h.tournamentService.GenerateRound()
		if err != nil {
			return nil, err
		}
		return jsonResponse{"games": games}, nil
	})
}

func (h *TournamentHandler) GenerateGame(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusCreated, brackets.MessageTournamentUpdated, func(context.Context) (interface{}, error) {
		game, err := h.tournamentService.GenerateGame()
		if err != nil {
			return nil, err
		}
		return jsonResponse{"game": game}, nil
	})
}

func (h *TournamentHandler) FinalizeGame(w http.ResponseWriter, r *http.Request) {
	h.scoreGame(w, r, h.tournamentService.FinalizeGame)
}

// RecordResult finalizes and commits a game in one request.
func (h *TournamentHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	h.scoreGame(w, r, h.tournamentService.RecordResult)
}

func (h *TournamentHandler) scoreGame(w http.ResponseWriter, r *http.Request, apply func(position, scoreTeam1, scoreTeam2 int) error) {
	position, err := getPositionFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input scoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.mutate(w, r, http.StatusOK, brackets.MessageTournamentUpdated, func(context.Context) (interface{}, error) {
		return nil, apply(position, input.ScoreTeam1, input.ScoreTeam2)
	})
}

func (h *TournamentHandler) CommitResults(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusOK, brackets.MessageTournamentUpdated, func(context.Context) (interface{}, error) {
		committed, err := h.tournamentService.CommitResults()
		if err != nil {
			return nil, err
		}
		return jsonResponse{"committed": committed}, nil
	})
}

func (h *TournamentHandler) CommitGame(w http.ResponseWriter, r *http.Request) {
	h.positionOp(w, r, h.tournamentService.CommitGame)
}

func (h *TournamentHandler) RevertGame(w http.ResponseWriter, r *http.Request) {
	h.positionOp(w, r, h.tournamentService.RevertGame)
}

func (h *TournamentHandler) RemoveGame(w http.ResponseWriter, r *http.Request) {
	h.positionOp(w, r, h.tournamentService.RemoveGame)
}

func (h *TournamentHandler) positionOp(w http.ResponseWriter, r *http.Request, op func(position int) error) {
	position, err := getPositionFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.mutate(w, r, http.StatusOK, brackets.MessageTournamentUpdated, func(context.Context) (interface{}, error) {
		return nil, op(position)
	})
}

func (h *TournamentHandler) GeneratePlayoffs(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusCreated, brackets.MessageTournamentUpdated, func(context.Context) (interface{}, error) {
		games, err := h.tournamentService.GeneratePlayoffs()
		if err != nil {
			return nil, err
		}
		return jsonResponse{"games": games}, nil
	})
}

func (h *TournamentHandler) FinishTournament(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusOK, brackets.MessageTournamentWinner, func(ctx context.Context) (interface{}, error) {
		if err := h.tournamentService.Finish(ctx); err != nil {
			return nil, err
		}
		response := jsonResponse{"tournament": h.view()}
		if winner, err := h.tournamentService.Winner(); err == nil {
			response["winner"] = winner
		}
		return response, nil
	})
}

func (h *TournamentHandler) GetWinner(w http.ResponseWriter, r *http.Request) {
	h.read(w, r, func() (interface{}, error) {
		winner, err := h.tournamentService.Winner()
		if err != nil {
			return nil, err
		}
		return jsonResponse{"winner": winner}, nil
	})
}

func (h *TournamentHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	h.read(w, r, func() (interface{}, error) {
		settings, err := h.tournamentService.Settings(r.Context())
		if err != nil {
			return nil, err
		}
		return jsonResponse{"settings": settings}, nil
	})
}

func (h *TournamentHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var input parametersInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.mutate(w, r, http.StatusOK, brackets.MessageTournamentUpdated, func(ctx context.Context) (interface{}, error) {
		settings := &models.Settings{MaxScore: input.MaxScore, NumberOfGames: input.NumberOfGames}
		if err := h.tournamentService.UpdateSettings(ctx, settings); err != nil {
			return nil, err
		}
		return jsonResponse{"settings": settings}, nil
	})
}
