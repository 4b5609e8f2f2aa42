package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/userdesk/internal/auth"
	"github.com/geocoder89/userdesk/internal/cache"
	"github.com/geocoder89/userdesk/internal/config"
	"github.com/geocoder89/userdesk/internal/db"
	"github.com/geocoder89/userdesk/internal/gql"
	httpx "github.com/geocoder89/userdesk/internal/http"
	"github.com/geocoder89/userdesk/internal/observability"
	"github.com/geocoder89/userdesk/internal/redisclient"
	"github.com/geocoder89/userdesk/internal/repo/memory"
	"github.com/geocoder89/userdesk/internal/repo/postgres"
	"github.com/geocoder89/userdesk/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// store is what the server needs from either backend.
type store interface {
	service.UserStore
	db.Seeder
	Ping(ctx context.Context) error
}

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, "userdesk-api", cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	// storage
	var users store
	var closeStore func()

	switch cfg.Store {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		users = memory.NewUsersRepo()
		closeStore = func() {}
	default:
		pool, err := db.NewPool(cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			log.Error("database connection failed", "err", err)
			os.Exit(1)
		}

		schemaCtx, cancel := config.WithTimeout(10 * time.Second)
		err = db.EnsureSchema(schemaCtx, pool)
		cancel()
		if err != nil {
			log.Error("schema setup failed", "err", err)
			os.Exit(1)
		}

		users = postgres.NewUsersRepo(pool, prom)
		closeStore = pool.Close
	}

	seedCtx, cancelSeed := config.WithTimeout(2 * time.Minute)
	if err := db.EnsureAdminUser(seedCtx, users, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
	}
	if _, err := db.SeedDemoUsers(seedCtx, users, cfg.SeedDemoUsers, log); err != nil {
		log.Error("demo seed failed", "err", err)
	}
	cancelSeed()

	listCache, closeCache := newListCache(cfg, log)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())
	authSvc := service.NewAuthService(users, jwtManager, listCache, log)
	userSvc := service.NewUserService(users, listCache, prom, log)

	schema, err := gql.NewSchema(authSvc, userSvc, log)
	if err != nil {
		log.Error("graphql schema build failed", "err", err)
		os.Exit(1)
	}

	router := httpx.NewRouter(log, httpx.Deps{
		Config:   cfg,
		Auth:     authSvc,
		Users:    userSvc,
		Schema:   schema,
		Prom:     prom,
		Gatherer: reg,
		Ping:     users.Ping,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}

	closeCache()
	closeStore()
}

// newListCache prefers redis when configured and reachable, otherwise the
// in-process cache.
func newListCache(cfg config.Config, log *slog.Logger) (cache.Store, func()) {
	if cfg.RedisAddr == "" {
		return cache.New(cfg.CacheTTL()), func() {}
	}

	client := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		log.Warn("redis unreachable; falling back to in-memory listing cache", "addr", cfg.RedisAddr, "err", err)
		_ = client.Close()
		return cache.New(cfg.CacheTTL()), func() {}
	}

	log.Info("listing cache backed by redis", "addr", cfg.RedisAddr)

	return cache.NewRedis(client.Raw(), cfg.CacheTTL(), log), func() { _ = client.Close() }
}

var (
	_ store = (*postgres.UsersRepo)(nil)
	_ store = (*memory.UsersRepo)(nil)
)
