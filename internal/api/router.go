package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/inotebook/backend/docs"
	"github.com/inotebook/backend/internal/api/handler"
	"github.com/inotebook/backend/internal/api/middleware"
	"github.com/inotebook/backend/internal/core/ports"
)

// Deps holds everything NewRouter wires into routes.
type Deps struct {
	Auth   ports.AuthService
	Notes  ports.NoteService
	Tokens middleware.TokenVerifier

	// Mongo and Redis back the readiness probe. Redis may be nil.
	Mongo *mongo.Database
	Redis *redis.Client

	Log            zerolog.Logger
	RequestTimeout time.Duration
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestMetrics())
	e.Use(requestLogger(d.Log))
	if d.RequestTimeout > 0 {
		e.Use(echomiddleware.ContextTimeoutWithConfig(echomiddleware.ContextTimeoutConfig{
			Timeout: d.RequestTimeout,
		}))
	}

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	fetchUser := middleware.FetchUser(d.Tokens)

	auth := e.Group("/api/auth")
	auth.POST("/createuser", authHandler.CreateUser)
	auth.POST("/login", authHandler.Login)
	auth.POST("/getUser", authHandler.GetUser, fetchUser)

	// --- Note routes (all authenticated) ---
	noteHandler := handler.NewNoteHandler(d.Notes)

	notes := e.Group("/api/notes", fetchUser)
	notes.GET("/fetchallnotes", noteHandler.FetchAll)
	notes.POST("/addnote", noteHandler.Add)
	notes.PUT("/updatenote/:id", noteHandler.Update)
	notes.DELETE("/deletenote/:id", noteHandler.Delete)

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	if d.Mongo != nil {
		e.GET("/health/ready", handler.NewHealthDependenciesHandler(d.Mongo, d.Redis).Readiness)
	}

	// --- Operational endpoints ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
