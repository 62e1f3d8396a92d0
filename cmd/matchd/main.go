package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/driftchat/matchd/internal/archive"
	"github.com/driftchat/matchd/internal/config"
	"github.com/driftchat/matchd/internal/events"
	"github.com/driftchat/matchd/internal/matchmaker"
	"github.com/driftchat/matchd/internal/messaging"
	"github.com/driftchat/matchd/internal/metrics"
	"github.com/driftchat/matchd/internal/service"
	"github.com/driftchat/matchd/internal/session"
)

func main() {
	log.Println("Starting matchd...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Redis setup.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(ctx).Err(); err != nil {
		cancel()
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	cancel()

	// NATS setup.
	natsClient, err := messaging.NewClient(messaging.Config{
		URL:           cfg.NATS.URL,
		Name:          cfg.NATS.Name,
		ReconnectWait: cfg.NATS.ReconnectWait(),
		MaxReconnects: cfg.NATS.MaxReconnects,
	})
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	// Optional session archive.
	var archiver matchmaker.Archiver
	var db *sql.DB
	if cfg.Postgres.DSN != "" {
		db, err = sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("failed to open Postgres: %v", err)
		}
		if err := db.Ping(); err != nil {
			log.Fatalf("failed to connect to Postgres: %v", err)
		}
		if err := archive.Migrate(db); err != nil {
			log.Fatalf("failed to migrate archive schema: %v", err)
		}
		archiver = archive.NewStore(db)
	}

	engine := matchmaker.New(matchmaker.Config{
		Threshold:     cfg.Match.Threshold,
		StaleAfter:    cfg.Match.StaleAfter(),
		WaitPerQueued: cfg.Match.WaitPerQueued(),
		EndedTTL:      cfg.Match.EndedTTL(),
	}, session.NewRedisStore(rdb), events.NewPublisher(natsClient), archiver)

	svc := service.New(engine, natsClient, cfg.Match.SweepInterval())
	if err := svc.Start(); err != nil {
		log.Fatalf("failed to start matchmaking service: %v", err)
	}

	// Metrics endpoint.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	log.Printf("matchd running")
	log.Printf("  redis_addr: %s", cfg.Redis.Address)
	log.Printf("  nats_url:   %s", cfg.NATS.URL)
	log.Printf("  threshold:  %.2f", cfg.Match.Threshold)
	if cfg.Postgres.DSN != "" {
		log.Printf("  archive:    enabled")
	}

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	svc.Stop()
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)
		shutdownCancel()
	}
	natsClient.Close()
	rdb.Close()
	if db != nil {
		db.Close()
	}
}
