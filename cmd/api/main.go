package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roadwatch.org/internal/auth"
	"roadwatch.org/internal/config"
	"roadwatch.org/internal/damage"
	"roadwatch.org/internal/httpapi"
	"roadwatch.org/internal/obs"
	"roadwatch.org/internal/reconcile"
	"roadwatch.org/internal/store/pg"
	"roadwatch.org/internal/stream"
)

var version = "0.3.1"

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	obs.Init()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Stores: Postgres when a DSN is configured, otherwise in-memory for
	// local development.
	var (
		damageStore  damage.Service
		profileStore auth.ProfileStore
		roleStore    auth.RoleStore
		db           *sql.DB
	)
	if cfg.DatabaseDSN != "" {
		store, err := pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer store.Close()
		db = store.DB()
		damageStore = store
		profileStore = store
		roleStore = store
	} else {
		log.Print("no DSN configured, using in-memory stores")
		damageStore = damage.NewInMemory()
		mem := auth.NewInMemory()
		profileStore = mem
		roleStore = mem
	}

	authSvc := auth.NewService(profileStore, roleStore, auth.WithTokenTTL(cfg.TokenTTL.Std()))

	events := stream.New()
	engine := reconcile.NewEngine(damageStore, reconcile.WithRecordHook(func(action string, rec damage.Record) {
		events.Publish(stream.EventFor(action, rec))
	}))

	api := httpapi.New(httpapi.Options{
		Auth:          authSvc,
		Damage:        damageStore,
		Reconciler:    engine,
		Stream:        events,
		ReadyProbe:    httpapi.ReadyProbe{DB: db},
		Version:       version,
		RateBurst:     cfg.RateLimit.Burst,
		RatePerSecond: cfg.RateLimit.PerSecond,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting roadwatch-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
