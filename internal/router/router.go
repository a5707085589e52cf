package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/Alkifr/hvp-v3/internal/config"
    "github.com/Alkifr/hvp-v3/internal/handler"
    "github.com/Alkifr/hvp-v3/internal/middleware"
)

// Deps bundles everything the route tree needs.  Rdb may be nil, in
// which case the cache and rate limit middleware become no-ops.
type Deps struct {
    Placement *handler.PlacementHandler
    Events    *handler.EventHandler
    Browse    *handler.BrowseHandler
    JWTSecret string
    Cache     config.CacheConfig
    RateLimit config.RateLimitConfig
    Rdb       *redis.Client
}

// RegisterRoutes registers every route on the provided Echo instance.
// The health check stays outside /v1 so load balancers can probe it
// without middleware in the way.
func RegisterRoutes(e *echo.Echo, d Deps) {
    e.GET("/healthz", handler.Health)

    v1 := e.Group("/v1")
    // Actor identity is optional everywhere: a valid bearer token tags
    // audit entries with its subject, anything else falls back to the
    // anonymous browser actor.
    v1.Use(middleware.ActorIdentity(d.JWTSecret))
    v1.Use(middleware.RateLimit(d.RateLimit, d.Rdb))

    // Browse endpoints are read-only and cacheable.
    browse := v1.Group("")
    browse.Use(middleware.ResponseCache(d.Cache, d.Rdb))
    browse.GET("/aircraft", d.Browse.ListAircraft)
    browse.GET("/hangars", d.Browse.ListHangars)
    browse.GET("/hangars/:id/layouts", d.Browse.ListLayouts)
    browse.GET("/layouts/:id/stands", d.Browse.ListStands)
    browse.GET("/layouts/:id/reservations", d.Browse.ListReservations)
    browse.GET("/events", d.Browse.ListEvents)
    browse.GET("/events/:id", d.Browse.GetEvent)

    // Event lifecycle.
    v1.POST("/events", d.Events.Create)
    v1.PATCH("/events/:id", d.Events.Update)
    v1.DELETE("/events/:id", d.Events.Delete)
    v1.GET("/events/:id/history", d.Events.History)

    // Placement operations.  Assign never displaces; the dnd endpoints
    // may bump a blocking event when the client asks for it.
    v1.PUT("/events/:id/reservation", d.Placement.Assign)
    v1.DELETE("/events/:id/reservation", d.Placement.Unassign)
    v1.POST("/events/:id/dnd-move", d.Placement.Move)
    v1.POST("/events/:id/dnd-place", d.Placement.Place)
}
