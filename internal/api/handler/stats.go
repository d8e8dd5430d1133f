package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/veldkamp-software/passfoto/internal/stats"
)

const (
	defaultDailyWindow = 7
	maxDailyWindow     = 90
)

// StatsProvider computes aggregate validation figures.
type StatsProvider interface {
	Overview(ctx context.Context) (*stats.Overview, error)
	Daily(ctx context.Context, days int) ([]stats.DailyCount, error)
}

// StatsHandler serves aggregate validation figures.
type StatsHandler struct {
	provider StatsProvider
	logger   *slog.Logger
}

func NewStatsHandler(provider StatsProvider, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		provider: provider,
		logger:   logger,
	}
}

// Overview GET /v1/stats - totals by status and per-check failure counts
func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.provider.Overview(c.Context())
	if err != nil {
		return err
	}

	if overview.CheckFailures == nil {
		overview.CheckFailures = []stats.CheckFailureCount{}
	}

	return c.JSON(overview)
}

// Daily GET /v1/stats/daily - per-day run counts over a recent window
func (h *StatsHandler) Daily(c *fiber.Ctx) error {
	days := c.QueryInt("days", defaultDailyWindow)
	if days < 1 || days > maxDailyWindow {
		days = defaultDailyWindow
	}

	counts, err := h.provider.Daily(c.Context(), days)
	if err != nil {
		return err
	}

	if counts == nil {
		counts = []stats.DailyCount{}
	}

	return c.JSON(fiber.Map{
		"days": days,
		"data": counts,
	})
}
