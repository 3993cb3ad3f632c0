package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/task-api/docs"
	"github.com/99minutos/task-api/internal/api/handler"
	"github.com/99minutos/task-api/internal/api/middleware"
	"github.com/99minutos/task-api/internal/core/ports"
	"github.com/99minutos/task-api/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Users          ports.UserService
	Tasks          ports.TaskService
	Readiness      map[string]handlers.Pinger
	AvatarMaxBytes int64
	Log            zerolog.Logger
	// Registerer receives the HTTP request metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "taskapp",
		Registerer: d.Registerer,
	}))

	// --- Dependencies ---
	userHandler := handler.NewUserHandler(d.Users, d.AvatarMaxBytes, d.Log)
	taskHandler := handler.NewTaskHandler(d.Tasks)
	auth := middleware.Auth(d.Users)

	// --- User routes ---
	users := e.Group("/users")
	users.POST("", userHandler.Create)
	users.POST("/signup", userHandler.Register)
	users.POST("/login", userHandler.Login)
	users.POST("/logout", userHandler.Logout, auth)
	users.POST("/logoutAll", userHandler.LogoutAll, auth)
	users.GET("/me", userHandler.Me, auth)
	users.DELETE("/me", userHandler.DeleteMe, auth)
	users.POST("/me/avatar", userHandler.UploadAvatar, auth)
	users.DELETE("/me/avatar", userHandler.RemoveAvatar, auth)
	users.PATCH("/:id", userHandler.UpdateProfile, auth)
	users.GET("/:id", userHandler.GetByID)
	users.GET("/:id/avatar", userHandler.GetAvatar)

	// --- Task routes (all authenticated) ---
	tasks := e.Group("/tasks", auth)
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PATCH("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency.Round(time.Microsecond)).
				Msg("request")
			return nil
		},
	})
}
