package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/userdesk/internal/config"
	"github.com/geocoder89/userdesk/internal/gql"
	"github.com/geocoder89/userdesk/internal/http/handlers"
	"github.com/geocoder89/userdesk/internal/http/middlewares"
	"github.com/geocoder89/userdesk/internal/observability"
	"github.com/geocoder89/userdesk/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

type Deps struct {
	Config   config.Config
	Auth     *service.AuthService
	Users    *service.UserService
	Schema   graphql.Schema
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	// Ping reports store readiness; nil means always ready.
	Ping func(ctx context.Context) error
}

func NewRouter(log *slog.Logger, d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("userdesk"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORS(d.Config.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	// ops
	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	authMW := middlewares.NewAuthMiddleware(d.Auth)
	authLimiter := middlewares.NewRateLimiter(d.Config.RateLimitAuthPerMinute, time.Minute)

	// graphql: login/signup run here unauthenticated, so the caller is optional
	// and the limiter applies to every operation
	gqlHandler := gql.NewHandler(d.Schema, log)
	gqlLimiter := middlewares.NewRateLimiter(d.Config.RateLimitAuthPerMinute*10, time.Minute)
	gqlGroup := r.Group("/graphql", authMW.OptionalAuth(), gqlLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	gqlGroup.POST("", gqlHandler.Serve)
	gqlGroup.GET("", gqlHandler.Serve)

	// REST
	api := r.Group("/api/v1")
	api.Use(middlewares.RequireJSON())

	authHandler := handlers.NewAuthHandler(d.Auth)
	authGroup := api.Group("/auth", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/signup", authHandler.SignUp)

	usersHandler := handlers.NewUsersHandler(d.Users)
	users := api.Group("/users", authMW.RequireAuth())
	users.GET("", usersHandler.ListUsers)
	users.GET("/export", usersHandler.ExportUsers)

	admin := users.Group("", authMW.RequireRole("ADMIN"))
	admin.GET("/:id", usersHandler.GetUser)
	admin.POST("", usersHandler.CreateUser)
	admin.PATCH("/:id", usersHandler.UpdateUser)
	admin.DELETE("/:id", usersHandler.DeleteUser)
	admin.POST("/batch-delete", usersHandler.BatchDelete)

	return r
}
