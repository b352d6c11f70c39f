package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/erimojdehi/aris-driver-check/internal/store"
)

func RunsHandler(runs *store.RunStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		limit, _ := strconv.Atoi(c.Query("limit", "30"))
		out, err := runs.GetRecent(ctx, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading runs")
		}
		return c.JSON(out)
	}
}

func RunDetailHandler(runs *store.RunStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		date, err := time.Parse("2006-01-02", c.Params("date"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid date, expected YYYY-MM-DD")
		}

		run, err := runs.GetLatestForDate(ctx, date)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading run")
		}
		if run == nil {
			return c.Status(fiber.StatusNotFound).SendString("No run for that date")
		}
		return c.JSON(run)
	}
}
