package http

import (
	"log/slog"
	"os"

	"github.com/agrilabs/agripay-backend-go/internal/handler/http/middleware"
	"github.com/agrilabs/agripay-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	JWTService jwt.Service,
	workOrderHandler WorkOrderHandler,
	payCalculationHandler PayCalculationHandler,
	deductionHandler DeductionHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "agripay"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/work-orders", func(r chi.Router) {
				r.Get("/", workOrderHandler.List)
				r.Post("/", workOrderHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", workOrderHandler.Get)
					r.Post("/transition", workOrderHandler.Transition)
					r.Delete("/", workOrderHandler.Discard)
					r.Post("/restore", workOrderHandler.Restore)
				})
			})

			r.Route("/pay-calculations", func(r chi.Router) {
				r.Get("/", payCalculationHandler.List)
				r.Route("/{period}", func(r chi.Router) {
					r.Get("/", payCalculationHandler.GetPeriod)
					r.Get("/workers/{workerID}", payCalculationHandler.GetWorkerDetail)
				})
			})

			r.Route("/deduction-rules", func(r chi.Router) {
				r.Get("/", deductionHandler.ListRules)
				r.Post("/", deductionHandler.CreateRule)
				r.Post("/import", deductionHandler.ImportRules)
				r.Post("/import-brackets", deductionHandler.ImportBrackets)
				r.Get("/{id}", deductionHandler.GetRule)
				r.Delete("/{id}", deductionHandler.DeactivateRule)
				r.Route("/codes/{code}", func(r chi.Router) {
					r.Get("/versions", deductionHandler.ListRuleVersions)
					r.Put("/rate", deductionHandler.UpdateRate)
					r.Get("/brackets", deductionHandler.ListBrackets)
					r.Put("/brackets", deductionHandler.ReplaceBrackets)
				})
			})
		})
	})
	return r
}
