package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openvote/voting-system/internal/api/handler"
	"github.com/openvote/voting-system/internal/api/middleware"
	"github.com/openvote/voting-system/internal/core/service"
	"github.com/openvote/voting-system/internal/infrastructure/config"
	mongodb "github.com/openvote/voting-system/internal/infrastructure/db/mongo"
	redisdb "github.com/openvote/voting-system/internal/infrastructure/db/redis"
	"github.com/openvote/voting-system/internal/infrastructure/identity"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The audit sink is injected because its worker lifecycle belongs to main.
func NewRouter(db *mongo.Database, rdb *redis.Client, audit service.VoteEventSink, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("voting"))

	// --- Dependencies ---
	codec := service.NewTokenCodec(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	users := mongodb.NewUserRepository(db)
	sessions := redisdb.NewTokenStore(rdb, cfg.JWT.RefreshTTL)
	sessionService := service.NewSessionManager(users, sessions, codec, log)

	polls := mongodb.NewPollRepository(db)
	ledger := mongodb.NewVoteRepository(db)
	pollService := service.NewPollService(polls, ledger, audit, log)

	verifier := identity.NewGoogleVerifier(cfg.Google.ClientID)
	secureCookies := cfg.Env == "production"

	authHandler := handler.NewAuthHandler(sessionService, verifier, cfg.JWT.RefreshTTL, secureCookies)
	pollHandler := handler.NewPollHandler(pollService)
	authMiddleware := middleware.Auth(codec)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/google", authHandler.Google)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout)

	// --- Poll routes (authenticated) ---
	v1 := e.Group("/v1", authMiddleware)
	v1.POST("/polls", pollHandler.Create)
	v1.GET("/polls", pollHandler.List)
	v1.GET("/polls/:id", pollHandler.Get)
	v1.POST("/polls/:id/votes", pollHandler.Vote)
	v1.GET("/polls/:id/results", pollHandler.Results)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
