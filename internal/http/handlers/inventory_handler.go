package handlers

import (
	"github.com/gofiber/fiber/v2"

	"clinicore/internal/domain"
	applog "clinicore/internal/log"
	"clinicore/internal/services"
	"clinicore/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func (h *InventoryHandler) Stock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "product id")
	}
	stock, err := h.Inv.Stock(id)
	if err != nil {
		return fail(c, "inventory.stock", err)
	}
	return c.JSON(fiber.Map{"product_id": id, "stock": stock})
}

type adjustRequest struct {
	Delta  string `json:"delta"`
	Reason string `json:"reason"`
}

func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "product id")
	}
	who, ok := actor(c)
	if !ok {
		return badInput(c, "staff id")
	}
	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return badInput(c, "body")
	}
	delta, ok := validate.Delta(req.Delta)
	if !ok {
		return badInput(c, "delta")
	}
	reason, ok := validate.Reason(req.Reason)
	if !ok {
		return badInput(c, "reason")
	}

	stock, err := h.Inv.AdjustStock(id, delta, reason, who)
	if err != nil {
		return fail(c, "inventory.adjust", err)
	}
	applog.Audit(c, "inventory.adjust", map[string]any{
		"product_id": id, "delta": delta, "reason": reason, "stock": stock,
	})
	return c.JSON(fiber.Map{"product_id": id, "stock": stock})
}

type restockRequest struct {
	Qty string `json:"qty"`
}

func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "product id")
	}
	who, ok := actor(c)
	if !ok {
		return badInput(c, "staff id")
	}
	var req restockRequest
	if err := c.BodyParser(&req); err != nil {
		return badInput(c, "body")
	}
	qty, ok := validate.Qty(req.Qty)
	if !ok {
		return badInput(c, "qty")
	}

	stock, err := h.Inv.Restock(id, qty, who)
	if err != nil {
		return fail(c, "inventory.restock", err)
	}
	applog.Audit(c, "inventory.restock", map[string]any{"product_id": id, "qty": qty, "stock": stock})
	return c.JSON(fiber.Map{"product_id": id, "stock": stock})
}

func (h *InventoryHandler) History(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "product id")
	}
	out := []domain.InventoryTransaction{}
	for t, err := range h.Inv.History(id) {
		if err != nil {
			return fail(c, "inventory.history", err)
		}
		out = append(out, t)
	}
	return c.JSON(out)
}

func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", 5)
	if threshold < 0 {
		return badInput(c, "threshold")
	}
	products, err := h.Inv.LowStock(threshold)
	if err != nil {
		return fail(c, "inventory.lowstock", err)
	}
	return c.JSON(products)
}
