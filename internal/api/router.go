package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/videotube/account-service/internal/api/handler"
	"github.com/videotube/account-service/internal/api/middleware"
	"github.com/videotube/account-service/internal/core/ports"
	"github.com/videotube/account-service/internal/infrastructure/http/handlers"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Auth     ports.AuthService
	Accounts ports.AccountService
	Profiles ports.ProfileService
	Tokens   ports.TokenService
	Users    middleware.UserLoader
	Watches  handler.WatchDispatcher

	Cookies    handler.CookieConfig
	UploadDir  string
	BodyLimit  string
	CORSOrigin string

	// Checks are run by the readiness probe.
	Checks map[string]handlers.Check

	// Metrics, when set, exposes HTTP metrics on /metrics.
	Metrics prometheus.Registerer
	// Gatherer backs /metrics; defaults to the default registry.
	Gatherer prometheus.Gatherer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	// Credentialed CORS needs explicit origins; none configured means same-origin only.
	if origins := splitOrigins(d.CORSOrigin); len(origins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     origins,
			AllowCredentials: true,
		}))
	}
	if d.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(d.BodyLimit))
	}
	if d.Metrics != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "videotube",
			Registerer: d.Metrics,
		}))
		gatherer := d.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookies, d.UploadDir)
	accountHandler := handler.NewAccountHandler(d.Accounts, d.UploadDir)
	profileHandler := handler.NewProfileHandler(d.Profiles)
	watchHandler := handler.NewWatchHandler(d.Watches)
	session := middleware.Auth(d.Tokens, d.Users)

	// --- User routes ---
	users := e.Group("/api/v1/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/refreshToken", authHandler.Refresh)

	users.POST("/logout", authHandler.Logout, session)
	users.POST("/change-password", accountHandler.ChangePassword, session)
	users.GET("/current-user", accountHandler.CurrentUser, session)
	users.PATCH("/update-user-details", accountHandler.UpdateDetails, session)
	users.PATCH("/avatar", accountHandler.UpdateAvatar, session)
	users.PATCH("/cover-image", accountHandler.UpdateCoverImage, session)
	users.GET("/c/:username", profileHandler.ChannelProfile, session)
	users.GET("/history", profileHandler.WatchHistory, session)
	users.POST("/history/:videoId", watchHandler.Record, session)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- API docs ---
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
			ev := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// splitOrigins parses a comma separated origin list. The wildcard is dropped
// because browsers refuse it on credentialed requests.
func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && p != "*" {
			out = append(out, p)
		}
	}
	return out
}
