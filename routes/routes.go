package routes

import (
	"net/http"

	"github.com/Dosada05/party-tournament/handlers"
	"github.com/Dosada05/party-tournament/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/party-tournament/docs"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	// GenerateLimiter ограничивает запросы, запускающие генерацию расписания.
	GenerateLimiter *middleware.RateLimiter
}

type Handlers struct {
	Tournament *handlers.TournamentHandler
	Team       *handlers.TeamHandler
	GameType   *handlers.GameTypeHandler
	Schedule   *handlers.ScheduleHandler
	WebSocket  *handlers.WebSocketHandler
	SSE        *handlers.SSEHandler
	Health     *handlers.HealthHandler
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.Healthz)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
	router.Get("/sse/tournaments/{tournamentID}", h.SSE.Stream)

	organizerOnly := func(r chi.Router) chi.Router {
		return r.With(middleware.Authenticate(opts.JWTSecret), middleware.RequireRole(middleware.RoleOrganizer))
	}
	limited := func(next http.HandlerFunc) http.Handler {
		if opts.GenerateLimiter == nil {
			return next
		}
		return opts.GenerateLimiter.Middleware(next)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/tournaments", func(r chi.Router) {
			// Публичные маршруты
			r.Get("/", h.Tournament.ListHandler)
			organizerOnly(r).Post("/", h.Tournament.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournament.GetByIDHandler)
				r.Get("/validation", h.Schedule.Validate)
				r.Get("/schedule", h.Schedule.GetSchedule)
				r.Get("/standings", h.Schedule.Standings)
				r.Get("/player-stats", h.Schedule.PlayerStats)
				r.Get("/players/search", h.Team.SearchPlayers)

				// Защищенные маршруты только для организаторов
				r.Group(func(r chi.Router) {
					r.Use(middleware.Authenticate(opts.JWTSecret))
					r.Use(middleware.RequireRole(middleware.RoleOrganizer))

					r.Patch("/", h.Tournament.UpdateHandler)
					r.Delete("/", h.Tournament.DeleteHandler)

					r.Post("/teams", h.Team.CreateTeam)
					r.Post("/players", h.Team.AddPlayer)
					r.Post("/players/bulk", h.Team.BulkAddPlayers)
					r.Post("/game-types", h.GameType.CreateGameType)

					r.Method(http.MethodPost, "/schedule", limited(h.Schedule.Generate))
					r.Method(http.MethodPut, "/schedule", limited(h.Schedule.Reschedule))
					r.Method(http.MethodPost, "/schedule/preview", limited(h.Schedule.Preview))
					r.Delete("/schedule", h.Schedule.Clear)
					r.Post("/schedule/reset", h.Schedule.Reset)
					r.Put("/rounds/{round}/games/{gameID}/result", h.Schedule.RecordResult)
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(middleware.RequireRole(middleware.RoleOrganizer))

			r.Route("/teams/{teamID}", func(r chi.Router) {
				r.Patch("/", h.Team.RenameTeam)
				r.Delete("/", h.Team.DeleteTeam)
			})
			r.Route("/players/{playerID}", func(r chi.Router) {
				r.Patch("/", h.Team.UpdatePlayer)
				r.Delete("/", h.Team.RemovePlayer)
				r.Post("/move", h.Team.MovePlayer)
			})
			r.Route("/game-types/{gameTypeID}", func(r chi.Router) {
				r.Patch("/", h.GameType.UpdateGameType)
				r.Delete("/", h.GameType.DeleteGameType)
				r.Post("/stations", h.GameType.AddStation)
				r.Delete("/stations/{stationID}", h.GameType.RemoveStation)
			})
		})
	})
}
