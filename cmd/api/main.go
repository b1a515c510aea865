package main

import (
    "context"
    "log"
    "net/http"
    "os"
    "strings"
    "time"

    "shipquote/internal/config"
    "shipquote/internal/db"
    "shipquote/internal/quote"
    "shipquote/internal/rate"
    "shipquote/internal/server"
    "shipquote/internal/serviceability"
    "shipquote/internal/zone"
)

func main() {
    cfg := config.Load()

    if strings.TrimSpace(cfg.DatabaseURL) == "" {
        log.Fatalf("DATABASE_URL not set. Please export DATABASE_URL before running.")
    }

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    pool, err := db.NewPool(ctx, cfg.DatabaseURL)
    if err != nil {
        log.Fatalf("failed to connect db: %v", err)
    }
    defer pool.Close()
    // Verify connectivity proactively
    if err := pool.Ping(ctx); err != nil {
        log.Fatalf("database ping failed: %v", err)
    }

    // Zone data: embedded table unless a newer file is configured.
    zones := zone.New()
    if cfg.ZoneDataFile != "" {
        zones, err = zone.NewFromFile(cfg.ZoneDataFile)
        if err != nil {
            log.Fatalf("failed to load zone data: %v", err)
        }
    }

    // Serviceability checks for every courier with a configured endpoint.
    agg := serviceability.NewAggregator(cfg.ServiceabilityTimeout)
    client := &http.Client{Timeout: cfg.ServiceabilityTimeout + time.Second}
    for c, ep := range cfg.CourierEndpoints {
        agg.Register(c, serviceability.HTTPChecker(client, ep.URL, ep.NeedsPickup))
    }

    cards := rate.NewStore(pool)
    engine := quote.NewEngine(zones, cards, agg)
    r := server.New(engine, cards)

    srv := &http.Server{
        Addr:              ":" + cfg.Port,
        Handler:           r,
        ReadTimeout:       10 * time.Second,
        ReadHeaderTimeout: 10 * time.Second,
        WriteTimeout:      20 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    log.Printf("api listening on :%s (%d courier serviceability endpoints configured)", cfg.Port, len(cfg.CourierEndpoints))
    if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        log.Println("server error:", err)
        os.Exit(1)
    }
}
