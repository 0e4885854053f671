// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/vamosjogar/sports-meetup-api/internal/config"
	"github.com/vamosjogar/sports-meetup-api/internal/handler"
	"github.com/vamosjogar/sports-meetup-api/internal/middleware"
)

// RegisterBase registers routes that carry no authentication and no
// domain logic. Currently that is only the health check.
func RegisterBase(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterBrowse registers the unauthenticated discovery endpoints. The
// Redis-backed response cache and token-bucket rate limiter are applied
// here and only here: browse traffic is the read-heavy, anonymous part of
// the API, while authenticated writes must always see fresh state. Both
// middlewares degrade to pass-through when rdb is nil.
func RegisterBrowse(e *echo.Echo, b *handler.BrowseHandler, rdb *redis.Client) {
	g := e.Group(
		"",
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)
	g.GET("/activities", b.List)
	g.GET("/activities/:id", b.GetByID)
	g.GET("/activities/:id/participantes", b.Participants)
}
