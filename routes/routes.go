package routes

import (
	"github.com/Dosada05/scrim-scheduler/config"
	"github.com/Dosada05/scrim-scheduler/handlers"
	"github.com/Dosada05/scrim-scheduler/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/scrim-scheduler/docs" // Сгенерированная swagger-спецификация
)

// SetupRoutes регистрирует все маршруты приложения на переданном роутере.
func SetupRoutes(
	router *chi.Mux,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	scheduleHandler *handlers.ScheduleHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(cfg.JWTSecretKey))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты: просмотр турнира, состава и расписания
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/teams", tournamentHandler.ListTeamsHandler)
		r.Get("/{tournamentID}/schedule", scheduleHandler.GetHandler)
		r.Get("/{tournamentID}/schedule/export", scheduleHandler.ExportCSVHandler)

		// Защищенные маршруты организатора
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/", tournamentHandler.ListHandler)
			r.Post("/", tournamentHandler.CreateHandler)
			r.Put("/{tournamentID}", tournamentHandler.UpdateDetailsHandler)
			r.Post("/{tournamentID}/cancel", tournamentHandler.CancelHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)

			r.Post("/{tournamentID}/teams", tournamentHandler.AddTeamHandler)
			r.Delete("/{tournamentID}/teams/{teamID}", tournamentHandler.RemoveTeamHandler)

			r.Post("/{tournamentID}/schedule", scheduleHandler.GenerateHandler)
			r.Post("/{tournamentID}/schedule/regenerate", scheduleHandler.RegenerateHandler)
			r.Post("/{tournamentID}/schedule/export", scheduleHandler.PublishExportHandler)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/dashboard/stats", dashboardHandler.Stats)
	})

	// Живые обновления по турниру (генерация расписания, смена статуса)
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}
