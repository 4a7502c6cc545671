// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/lokanta/reservations/internal/config"
	"github.com/lokanta/reservations/internal/handler"
	"github.com/lokanta/reservations/internal/middleware"
)

// RegisterRoutes wires every endpoint onto the provided Echo instance.
// The reservations API lives under /v1; the webhook is additionally guarded
// by the Redis token-bucket rate limiter (a nil client disables it).
func RegisterRoutes(e *echo.Echo, rh *handler.ReservationHandler, th *handler.TableHandler, wh *handler.WebhookHandler, rdb *redis.Client, rlCfg config.RateLimitConfig) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")

	// Direct booking API.
	v1.GET("/reservations", rh.List)
	v1.POST("/reservations", rh.Create)
	v1.GET("/reservations/:id", rh.Get)
	v1.PATCH("/reservations/:id/status", rh.UpdateStatus)

	// Table lifecycle: deactivate instead of delete.
	v1.PATCH("/tables/:id/active", th.SetActive)

	// Messaging webhook: GET handshake plus POST deliveries, rate limited.
	wg := v1.Group("/webhooks/whatsapp", middleware.NewTokenBucket(rlCfg, rdb))
	wg.GET("", wh.Verify)
	wg.POST("", wh.Receive)
}
