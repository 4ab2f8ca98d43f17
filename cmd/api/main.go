package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/config"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/db"
	httpx "github.com/StudentTahseenraza/CRUD-API-implementation/internal/http"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/observability"
	"github.com/StudentTahseenraza/CRUD-API-implementation/internal/redisclient"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	// tracing is opt-in; without an endpoint requests just skip the exporter
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "taskmaster-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	// database: pool first, then schema, then the seeded admin account
	pool, err := db.NewPool(cfg.DBURL, observability.NewDBTracer(prom))

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	{
		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			log.Error("schema setup failed", "err", err)
			os.Exit(1)
		}

		if err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
			log.Error("admin seed failed", "err", err)
			os.Exit(1)
		}
	}

	// redis is optional; the rate limiter falls back to in-process windows
	var rdb *redisclient.Client

	if cfg.RedisAddr != "" {
		rdb = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		ctx, cancel := config.WithTimeout(2 * time.Second)
		if err := rdb.Ping(ctx); err != nil {
			log.Warn("redis unreachable, using in-memory rate limits", "err", err)
			rdb.Close()
			rdb = nil
		}
		cancel()
	}

	// set up routers with the wired dependencies
	router := httpx.NewRouter(cfg, pool, rdb, prom)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
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
			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
