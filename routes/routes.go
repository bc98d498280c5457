package routes

import (
	"net/http"

	"github.com/Dosada05/kicker-system/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	tournamentHandler *handlers.TournamentHandler,
	playerHandler *handlers.PlayerHandler,
	webSocketHandler *handlers.WebSocketHandler,
	allowedOrigins []string,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/players", func(r chi.Router) {
		r.Get("/", playerHandler.ListPlayers)
		r.Post("/", playerHandler.CreatePlayer)
		r.Get("/{name}", playerHandler.GetPlayer)
	})

	router.Route("/settings", func(r chi.Router) {
		r.Get("/", tournamentHandler.GetSettings)
		r.Put("/", tournamentHandler.UpdateSettings)
	})

	router.Route("/tournament", func(r chi.Router) {
		r.Get("/", tournamentHandler.GetTournament)
		r.Post("/", tournamentHandler.StartTournament)
		r.Put("/parameters", tournamentHandler.SetParameters)
		r.Put("/one-on-one", tournamentHandler.SetOneOnOne)
		r.Post("/finish", tournamentHandler.FinishTournament)
		r.Get("/winner", tournamentHandler.GetWinner)

		r.Route("/players/{name}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetPlayer)
			r.Delete("/", tournamentHandler.RemovePlayer)
			r.Post("/toggle", tournamentHandler.TogglePlayer)
		})

		r.Post("/rounds", tournamentHandler.GenerateRound)
		r.Post("/commit", tournamentHandler.CommitResults)
		r.Post("/playoffs", tournamentHandler.GeneratePlayoffs)

		r.Post("/games", tournamentHandler.GenerateGame)
		r.Route("/games/{position}", func(r chi.Router) {
			r.Delete("/", tournamentHandler.RemoveGame)
			r.Put("/score", tournamentHandler.FinalizeGame)
			r.Post("/result", tournamentHandler.RecordResult)
			r.Post("/commit", tournamentHandler.CommitGame)
			r.Post("/revert", tournamentHandler.RevertGame)
		})
	})

	router.Get("/ws/tournament", webSocketHandler.ServeWs)
}
