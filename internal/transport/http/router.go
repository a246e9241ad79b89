package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pixshelf/pixshelf-api/internal/application/auth"
	imageapp "github.com/pixshelf/pixshelf-api/internal/application/image"
	"github.com/pixshelf/pixshelf-api/internal/config"
	"github.com/pixshelf/pixshelf-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/pixshelf/pixshelf-api/internal/infrastructure/jwt"
	s3infra "github.com/pixshelf/pixshelf-api/internal/infrastructure/s3"
	"github.com/pixshelf/pixshelf-api/internal/infrastructure/smtp"
	"github.com/pixshelf/pixshelf-api/internal/infrastructure/sns"
	"github.com/pixshelf/pixshelf-api/internal/transport/http/cookie"
	"github.com/pixshelf/pixshelf-api/internal/transport/http/handler"
	appmiddleware "github.com/pixshelf/pixshelf-api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo *dynamo.AccountRepo
	ImageRepo   *dynamo.ImageRepo
	S3Store     *s3infra.Store
	Mailer      smtp.Mailer
	SMSSender   sns.SMSSender
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	cookies := cookie.NewManager(cfg)

	authSvc := auth.NewService(auth.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		Mailer:      deps.Mailer,
		SMSSender:   deps.SMSSender,
		Tokens:      deps.JWTProvider,
	})
	imageSvc := imageapp.NewService(deps.ImageRepo, deps.S3Store)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, cookies)
	imageH := handler.NewImageHandler(imageSvc)

	authMw := appmiddleware.Auth(deps.JWTProvider)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/signup", authH.Signup)
		r.Post("/verify-code", authH.VerifyCode)
		r.Post("/forgot-password", authH.ForgotPassword)
		r.Post("/reset-password", authH.ResetPassword)
		r.Post("/signin", authH.Signin)
		r.Post("/refresh-token", authH.Refresh)
		r.Post("/logout", authH.Logout)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/images", imageH.Upload)
			r.Get("/images", imageH.List)
			r.Post("/images/order", imageH.UpdateOrder)
			r.Get("/images/{id}/file", imageH.Download)
			r.Post("/images/{id}", imageH.Update)
			r.Delete("/images/{id}", imageH.Delete)
		})
	})

	return r
}
