package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/erimojdehi/aris-driver-check/internal/model"
	"github.com/erimojdehi/aris-driver-check/internal/service"
	"github.com/erimojdehi/aris-driver-check/internal/store"
)

func SnapshotsHandler(snapshots *store.SnapshotStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		dates, err := snapshots.Dates(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading snapshots")
		}

		out := make([]string, 0, len(dates))
		for _, d := range dates {
			out = append(out, d.Format("2006-01-02"))
		}
		return c.JSON(fiber.Map{"dates": out})
	}
}

func SnapshotDetailHandler(snapshots *store.SnapshotStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		date, err := time.Parse("2006-01-02", c.Params("date"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid date, expected YYYY-MM-DD")
		}

		set, err := snapshots.Read(ctx, date)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading snapshot")
		}
		if set == nil {
			return c.Status(fiber.StatusNotFound).SendString("No snapshot for that date")
		}

		records := make([]*model.LicenceRecord, 0, set.Len())
		for _, key := range set.Keys() {
			records = append(records, set.Get(key))
		}
		return c.JSON(fiber.Map{
			"date":    set.Date.Format("2006-01-02"),
			"count":   set.Len(),
			"records": records,
		})
	}
}

// ChangesHandler diffs a date's snapshot against an earlier one, the previous
// day by default, the same comparison the daily run reports on.
func ChangesHandler(snapshots *store.SnapshotStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		date, err := time.Parse("2006-01-02", c.Query("date", time.Now().Format("2006-01-02")))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid date, expected YYYY-MM-DD")
		}
		from := date.AddDate(0, 0, -1)
		if raw := c.Query("from"); raw != "" {
			if from, err = time.Parse("2006-01-02", raw); err != nil {
				return c.Status(fiber.StatusBadRequest).SendString("Invalid from date, expected YYYY-MM-DD")
			}
		}

		current, err := snapshots.Read(ctx, date)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading snapshot")
		}
		if current == nil {
			return c.Status(fiber.StatusNotFound).SendString("No snapshot for that date")
		}

		previous, err := snapshots.Read(ctx, from)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading previous snapshot")
		}

		changes := service.Compare(previous, current)
		return c.JSON(fiber.Map{
			"date":     date.Format("2006-01-02"),
			"from":     from.Format("2006-01-02"),
			"baseline": previous == nil,
			"changes":  changes,
		})
	}
}
