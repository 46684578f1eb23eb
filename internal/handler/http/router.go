package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-compensation-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-compensation-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-compensation-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	// CommitLimiter throttles structure commits per user. Nil disables it.
	CommitLimiter *middleware.KeyedRateLimiter
	// RequestLogLevel overrides the request log level. Zero means debug.
	RequestLogLevel *slog.Level
}

func NewRouter(JWTService jwt.Service, compensationHandler CompensationHandler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-compensation"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	level := slog.LevelDebug
	if opts.RequestLogLevel != nil {
		level = *opts.RequestLogLevel
	}
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  level,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	commitLimit := func(next http.Handler) http.Handler { return next }
	if opts.CommitLimiter != nil {
		commitLimit = middleware.RateLimitByUser(opts.CommitLimiter)
	}

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RequireCompany)

			r.Route("/compensation", func(r chi.Router) {
				r.With(middleware.RequireManager).Post("/preview", compensationHandler.PreviewDraft)

				r.Route("/structures", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionCompensationView)).Get("/", compensationHandler.ListStructures)
					r.With(middleware.RequirePermission(user.PermissionCompensationManage)).Post("/", compensationHandler.InitializeStructure)
				})
			})

			// Self access and self-exclusion are decided in the service.
			r.Route("/employees/{employeeID}/compensation", func(r chi.Router) {
				r.Get("/", compensationHandler.GetStructure)
				r.Post("/preview", compensationHandler.PreviewStructure)
				r.With(commitLimit).Put("/", compensationHandler.UpdateStructure)
				r.With(middleware.RequirePermission(user.PermissionCompensationManage)).Delete("/", compensationHandler.DeleteStructure)
				r.Get("/slip.pdf", compensationHandler.ExportSalarySlip)
			})
		})
	})
	return r
}
