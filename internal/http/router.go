package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/speakwise/speakwise/internal/auth"
	"github.com/speakwise/speakwise/internal/cache"
	"github.com/speakwise/speakwise/internal/config"
	"github.com/speakwise/speakwise/internal/http/handlers"
	"github.com/speakwise/speakwise/internal/http/middlewares"
	"github.com/speakwise/speakwise/internal/observability"
)

// UserStore is everything the HTTP layer needs from a credential store;
// both the postgres and the in-memory repos satisfy it.
type UserStore interface {
	handlers.CredentialStore
	handlers.ProfileStore
	middlewares.UserResolver
}

func NewRouter(
	cfg config.Config,
	log *slog.Logger,
	users UserStore,
	tokens *auth.Manager,
	prom *observability.Prom,
	reg *prometheus.Registry,
	ping func() error,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// operational surface

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// wire up handlers

	authHandler := handlers.NewAuthHandler(users, tokens, cfg)
	profileHandler := handlers.NewProfileHandler(users, cache.New(30*time.Second))
	session := middlewares.NewSessionMiddleware(tokens, users)

	// The credential endpoints are unthrottled by default; operators can
	// opt in to a coarse per-IP limiter via AUTH_RATE_LIMIT.
	signup := gin.HandlersChain{authHandler.SignUp}
	login := gin.HandlersChain{authHandler.Login}

	if cfg.AuthRateLimit > 0 {
		limiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
		limited := limiter.RateLimiterMiddleware(middlewares.KeyByIP)

		signup = gin.HandlersChain{limited, authHandler.SignUp}
		login = gin.HandlersChain{limited, authHandler.Login}
	}

	r.POST("/signup", signup...)
	r.POST("/login", login...)
	r.POST("/logout", authHandler.Logout)

	r.GET("/profile/:query", profileHandler.GetProfile)
	r.PUT("/update/:id", session.RequireSession(), profileHandler.UpdateProfile)

	return r
}
