package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/erimojdehi/aris-driver-check/internal/store"
)

func OperatorsHandler(operators *store.OperatorStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		out, err := operators.GetAll(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading operators")
		}
		return c.JSON(out)
	}
}

func OperatorDetailHandler(operators *store.OperatorStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		op, err := operators.GetByLicence(ctx, c.Params("licence"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading operator")
		}
		if op == nil {
			return c.Status(fiber.StatusNotFound).SendString("Operator not found")
		}
		return c.JSON(op)
	}
}

func DepartmentsHandler(operators *store.OperatorStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()

		out, err := operators.Departments(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading departments")
		}
		return c.JSON(out)
	}
}
