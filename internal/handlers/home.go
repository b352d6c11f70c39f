package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/erimojdehi/aris-driver-check/internal/store"
)

func HomeHandler(snapshots *store.SnapshotStore, runs *store.RunStore, operators *store.OperatorStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		dates, err := snapshots.Dates(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading snapshots")
		}

		rosterCount, err := operators.CountOperators(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading roster")
		}

		recent, err := runs.GetRecent(ctx, 1)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading runs")
		}

		out := fiber.Map{
			"snapshot_count": len(dates),
			"roster_count":   rosterCount,
		}
		if len(dates) > 0 {
			out["latest_snapshot"] = dates[0].Format("2006-01-02")
		}
		if len(recent) > 0 {
			out["latest_run"] = recent[0]
		}
		return c.JSON(out)
	}
}
