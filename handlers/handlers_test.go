package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Dosada05/kicker-system/handlers"
	"github.com/Dosada05/kicker-system/models"
	"github.com/Dosada05/kicker-system/repositories"
	"github.com/Dosada05/kicker-system/routes"
	"github.com/Dosada05/kicker-system/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTournamentRepo struct {
	mu    sync.Mutex
	saved *models.Tournament
}

func (r *memTournamentRepo) Load(context.Context) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		return nil, repositories.ErrTournamentNotFound
	}
	return r.saved.Clone(), nil
}

func (r *memTournamentRepo) Save(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = t.Clone()
	return nil
}

type memPlayerRepo struct {
	mu      sync.Mutex
	players map[string]*models.Player
}

func (r *memPlayerRepo) Create(_ context.Context, p *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[p.Name]; ok {
		return repositories.ErrPlayerNameConflict
	}
	r.players[p.Name] = p.Clone()
	return nil
}

func (r *memPlayerRepo) GetByName(_ context.Context, name string) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[name]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return p.Clone(), nil
}

func (r *memPlayerRepo) List(context.Context) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := make([]*models.Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p.Clone())
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })
	return players, nil
}

func (r *memPlayerRepo) Upsert(_ context.Context, players []*models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range players {
		r.players[p.Name] = p.Clone()
	}
	return nil
}

type memSettingsRepo struct {
	mu       sync.Mutex
	settings *models.Settings
}

func (r *memSettingsRepo) Get(context.Context) (*models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return nil, repositories.ErrSettingsNotFound
	}
	s := *r.settings
	return &s, nil
}

func (r *memSettingsRepo) LoadMaxScore(ctx context.Context) (int, error) {
	s, err := r.Get(ctx)
	if err != nil {
		return 0, err
	}
	return s.MaxScore, nil
}

func (r *memSettingsRepo) LoadNumberOfGames(ctx context.Context) (int, error) {
	s, err := r.Get(ctx)
	if err != nil {
		return 0, err
	}
	return s.NumberOfGames, nil
}

func (r *memSettingsRepo) Save(_ context.Context, s *models.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := *s
	r.settings = &saved
	return nil
}

type testServer struct {
	router      *chi.Mux
	tournaments *memTournamentRepo
	players     *memPlayerRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ts := &testServer{
		router:      chi.NewRouter(),
		tournaments: &memTournamentRepo{},
		players:     &memPlayerRepo{players: map[string]*models.Player{}},
	}
	tournamentService := services.NewTournamentService(
		ts.tournaments,
		ts.players,
		&memSettingsRepo{},
		nil,
		services.TournamentConfig{Rand: rand.New(rand.NewPCG(1, 2))},
		logger,
	)
	require.NoError(t, tournamentService.Initialize(context.Background()))
	playerService := services.NewPlayerService(ts.players, 0, logger)

	tournamentHandler := handlers.NewTournamentHandler(tournamentService, playerService, nil, logger)
	routes.SetupRoutes(
		ts.router,
		tournamentHandler,
		handlers.NewPlayerHandler(playerService),
		handlers.NewWebSocketHandler(nil, tournamentHandler, logger),
		[]string{"*"},
	)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&payload), rec.Body.String())
	}
	return rec.Code, payload
}

func (ts *testServer) createPlayers(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		status, _ := ts.do(t, http.MethodPost, "/players", `{"name":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, status)
	}
}

func TestCreatePlayer(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodPost, "/players", `{"name":"  alice "}`)
	require.Equal(t, http.StatusCreated, status)
	player := body["player"].(map[string]interface{})
	assert.Equal(t, "alice", player["name"])
	assert.Equal(t, 1200.0, player["rating"])

	status, _ = ts.do(t, http.MethodPost, "/players", `{"name":"alice"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodPost, "/players", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = ts.do(t, http.MethodPost, "/players", `{"name":"bob", "extra":1}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "unknown key")

	status, body = ts.do(t, http.MethodGet, "/players", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["players"], 1)

	status, _ = ts.do(t, http.MethodGet, "/players/nobody", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTogglePlayer(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayers(t, "alice")

	status, body := ts.do(t, http.MethodPost, "/tournament/players/alice/toggle", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["signed_up"])

	status, _ = ts.do(t, http.MethodGet, "/tournament/players/alice", "")
	assert.Equal(t, http.StatusOK, status)

	status, body = ts.do(t, http.MethodPost, "/tournament/players/alice/toggle", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["signed_up"])

	status, _ = ts.do(t, http.MethodGet, "/tournament/players/alice", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.do(t, http.MethodPost, "/tournament/players/ghost/toggle", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.do(t, http.MethodDelete, "/tournament/players/alice", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGameLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayers(t, "alice", "bob")

	status, _ := ts.do(t, http.MethodPut, "/tournament/one-on-one", `{"one_on_one":true}`)
	require.Equal(t, http.StatusOK, status)
	for _, name := range []string{"alice", "bob"} {
		status, _ = ts.do(t, http.MethodPost, "/tournament/players/"+name+"/toggle", "")
		require.Equal(t, http.StatusOK, status)
	}

	status, body := ts.do(t, http.MethodPost, "/tournament/games", "")
	require.Equal(t, http.StatusCreated, status)
	game := body["game"].(map[string]interface{})
	winner := game["team1"].([]interface{})[0].(string)

	status, _ = ts.do(t, http.MethodPut, "/tournament/one-on-one", `{"one_on_one":false}`)
	assert.Equal(t, http.StatusConflict, status, "team size is fixed once games exist")

	status, _ = ts.do(t, http.MethodPost, "/tournament/games/0/commit", "")
	assert.Equal(t, http.StatusConflict, status, "unfinished game")

	status, _ = ts.do(t, http.MethodPut, "/tournament/games/0/score", `{"score_team1":11,"score_team2":5}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodPut, "/tournament/games/0/score", `{"score_team1":10,"score_team2":5}`)
	require.Equal(t, http.StatusOK, status)

	status, body = ts.do(t, http.MethodPost, "/tournament/commit", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["committed"])

	status, body = ts.do(t, http.MethodGet, "/tournament/players/"+winner, "")
	require.Equal(t, http.StatusOK, status)
	player := body["player"].(map[string]interface{})
	assert.InDelta(t, 1216.0, player["rating"], 1e-9)
	assert.Equal(t, 1.0, player["won_games_in_tournament"])

	registered, err := ts.players.GetByName(context.Background(), winner)
	require.NoError(t, err)
	assert.InDelta(t, 1216.0, registered.Rating, 1e-9, "committed stats are written back to the registry")

	saved, err := ts.tournaments.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, saved.Games, 1)
	assert.True(t, saved.Games[0].ResultCommitted)

	status, _ = ts.do(t, http.MethodPost, "/tournament/games/0/revert", "")
	require.Equal(t, http.StatusOK, status)

	status, body = ts.do(t, http.MethodGet, "/tournament/players/"+winner, "")
	require.Equal(t, http.StatusOK, status)
	player = body["player"].(map[string]interface{})
	assert.InDelta(t, 1200.0, player["rating"], 1e-9)

	status, _ = ts.do(t, http.MethodPost, "/tournament/games/0/revert", "")
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodDelete, "/tournament/games/0", "")
	require.Equal(t, http.StatusOK, status)

	status, body = ts.do(t, http.MethodGet, "/tournament", "")
	require.Equal(t, http.StatusOK, status)
	view := body["tournament"].(map[string]interface{})
	assert.Empty(t, view["games"])
	assert.Len(t, view["players"], 2)
}

func TestGamePositionValidation(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodPost, "/tournament/games/abc/commit", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodPost, "/tournament/games/3/commit", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodPut, "/tournament/games/0/score", `{"score_team1":`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestNotEnoughPlayers(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, http.MethodPost, "/tournament/rounds", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodPost, "/tournament/playoffs", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodGet, "/tournament/winner", "")
	assert.Equal(t, http.StatusConflict, status)
}

func TestFinishTournament(t *testing.T) {
	ts := newTestServer(t)
	ts.createPlayers(t, "alice")

	status, body := ts.do(t, http.MethodPost, "/tournament/finish", "")
	require.Equal(t, http.StatusOK, status)
	view := body["tournament"].(map[string]interface{})
	assert.Equal(t, true, view["finished"])

	status, _ = ts.do(t, http.MethodPost, "/tournament/players/alice/toggle", "")
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodPost, "/tournament/finish", "")
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodPost, "/tournament", `{"mode":"MONSTERDYP"}`)
	require.Equal(t, http.StatusCreated, status)

	status, _ = ts.do(t, http.MethodPost, "/tournament/players/alice/toggle", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestStartTournamentUnknownMode(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodPost, "/tournament", `{"mode":"SWISS"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "MONSTERDYP")
}

func TestSettings(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(t, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, status)
	settings := body["settings"].(map[string]interface{})
	assert.Equal(t, 10.0, settings["max_score"])
	assert.Equal(t, 1.0, settings["number_of_games"])

	status, _ = ts.do(t, http.MethodPut, "/settings", `{"max_score":0,"number_of_games":1}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodPut, "/settings", `{"max_score":7,"number_of_games":3}`)
	require.Equal(t, http.StatusOK, status)

	status, body = ts.do(t, http.MethodGet, "/tournament", "")
	require.Equal(t, http.StatusOK, status)
	view := body["tournament"].(map[string]interface{})
	assert.Equal(t, 7.0, view["max_score"])
	assert.Equal(t, 3.0, view["number_of_games"])

	status, _ = ts.do(t, http.MethodPut, "/tournament/parameters", `{"max_score":5,"number_of_games":2}`)
	require.Equal(t, http.StatusOK, status)

	status, body = ts.do(t, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, status)
	settings = body["settings"].(map[string]interface{})
	assert.Equal(t, 7.0, settings["max_score"], "tournament parameters do not touch stored settings")
}
