package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"roadwatch.org/internal/obs"
	"roadwatch.org/internal/reconcile"
	"roadwatch.org/internal/store/pg"
)

// Out-of-band reconciliation runner for operators who prefer the CLI over
// the admin endpoint. Prints the full report as JSON.
func main() {
	log.SetFlags(0)
	var (
		dsn     = flag.String("dsn", os.Getenv("ROADWATCH_PG_DSN"), "PostgreSQL DSN")
		timeout = flag.Duration("timeout", 2*time.Minute, "Run timeout")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or ROADWATCH_PG_DSN")
	}

	obs.Init()

	store, err := pg.Open(*dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, runErr := reconcile.NewEngine(store).Run(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("encode report: %v", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
