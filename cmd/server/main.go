package main // Entry point package

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/Alkifr/hvp-v3/internal/config"
    "github.com/Alkifr/hvp-v3/internal/database"
    "github.com/Alkifr/hvp-v3/internal/handler"
    "github.com/Alkifr/hvp-v3/internal/planner"
    "github.com/Alkifr/hvp-v3/internal/queue"
    "github.com/Alkifr/hvp-v3/internal/repository"
    "github.com/Alkifr/hvp-v3/internal/router"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis is optional: a nil client disables caching and rate limiting.
    rdb := config.NewRedisClient()

    events := repository.NewEventRepo(db)
    reservations := repository.NewReservationRepo(db)
    stands := repository.NewStandRepo(db)
    layouts := repository.NewLayoutRepo(db)
    audit := repository.NewAuditRepo(db)
    aircraft := repository.NewAircraftRepo(db)

    svc := planner.NewPlacementService(db, events, reservations, stands, layouts, audit)

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.RequestID())
    e.Use(echomw.Logger())

    router.RegisterRoutes(e, router.Deps{
        Placement: handler.NewPlacementHandler(svc),
        Events:    handler.NewEventHandler(svc, events, audit, aircraft),
        Browse:    handler.NewBrowseHandler(layouts, stands, events, reservations, aircraft),
        JWTSecret: cfg.JWTSecret,
        Cache:     config.LoadCacheConfig(),
        RateLimit: config.LoadRateLimitConfig(),
        Rdb:       rdb,
    })

    // The consumer runs its own reconnect loop for the lifetime of the
    // process and only logs failures.
    go func() {
        if err := queue.StartPlacementConsumer(); err != nil {
            log.Printf("placement consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
