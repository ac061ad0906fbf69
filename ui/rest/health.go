package rest

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/infrastructure/valkey"
	"github.com/mervel/storefront/pkg/utils"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// ComponentStatus is the probe result of one dependency.
type ComponentStatus struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

type Health struct {
	DB     *gorm.DB
	Valkey *valkey.Client
}

func InitRestHealth(app fiber.Router, db *gorm.DB, vk *valkey.Client) Health {
	handler := Health{DB: db, Valkey: vk}

	group := app.Group("/health")
	group.Get("/live", handler.Live)
	group.Get("/status", handler.GetStatus)

	return handler
}

func (h *Health) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// GetStatus pings the database and, when configured, Valkey.
func (h *Health) GetStatus(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	records := []ComponentStatus{probe("database", func() error {
		sqlDB, err := h.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})}
	if h.Valkey != nil {
		records = append(records, probe("valkey", func() error { return h.Valkey.Ping(ctx) }))
	}

	for _, r := range records {
		if !r.Healthy {
			return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ResponseData{
				Status:  503,
				Code:    "SERVICE_UNAVAILABLE",
				Message: r.Name + " is unreachable",
				Results: records,
			})
		}
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: records,
	})
}

func probe(name string, ping func() error) ComponentStatus {
	start := time.Now()
	err := ping()
	status := ComponentStatus{Name: name, Healthy: err == nil, Latency: time.Since(start).String()}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}
