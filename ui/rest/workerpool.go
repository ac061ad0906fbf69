package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/pkg/workerpool"
)

// backgroundPool delivers order events to the realtime feed.
var backgroundPool *workerpool.Pool

// SetBackgroundPool registers the pool whose stats are exposed.
func SetBackgroundPool(pool *workerpool.Pool) {
	backgroundPool = pool
}

// GetWorkerPoolStats returns real-time worker pool statistics
func GetWorkerPoolStats(c *fiber.Ctx) error {
	if backgroundPool == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Worker pool not initialized",
		})
	}

	stats := backgroundPool.GetStats()
	return c.JSON(stats)
}
