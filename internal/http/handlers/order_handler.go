package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "clinicore/internal/log"
	"clinicore/internal/services"
	"clinicore/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type addItemRequest struct {
	PatientID string `json:"patient_id"`
	ProductID string `json:"product_id"`
	Qty       string `json:"qty"`
}

func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badInput(c, "body")
	}
	patientID, ok := validate.ID(req.PatientID)
	if !ok {
		return badInput(c, "patient id")
	}
	productID, ok := validate.ID(req.ProductID)
	if !ok {
		return badInput(c, "product id")
	}
	qty, ok := validate.Qty(req.Qty)
	if !ok {
		return badInput(c, "qty")
	}

	if err := h.Orders.AddItem(patientID, productID, qty); err != nil {
		return fail(c, "cart.add", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *OrderHandler) RemoveItem(c *fiber.Ctx) error {
	patientID, ok := validate.ID(c.Query("patientId"))
	if !ok {
		return badInput(c, "patient id")
	}
	productID, ok := validate.ID(c.Params("productId"))
	if !ok {
		return badInput(c, "product id")
	}
	if err := h.Orders.RemoveItem(patientID, productID); err != nil {
		return fail(c, "cart.remove", err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (h *OrderHandler) Cart(c *fiber.Ctx) error {
	patientID, ok := validate.ID(c.Query("patientId"))
	if !ok {
		return badInput(c, "patient id")
	}
	view, err := h.Orders.Cart(patientID)
	if err != nil {
		return fail(c, "cart.view", err)
	}
	return c.JSON(view)
}

type checkoutRequest struct {
	PatientID       string `json:"patient_id"`
	DeliveryAddress string `json:"delivery_address"`
}

func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badInput(c, "body")
	}
	patientID, ok := validate.ID(req.PatientID)
	if !ok {
		return badInput(c, "patient id")
	}
	address, ok := validate.Address(req.DeliveryAddress)
	if !ok {
		return badInput(c, "delivery address")
	}

	order, err := h.Orders.Checkout(patientID, address)
	if err != nil {
		return fail(c, "order.checkout", err)
	}
	applog.Audit(c, "order.checkout", map[string]any{"order_id": order.ID, "total": order.Total.String()})
	return c.JSON(order)
}

func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "order id")
	}
	who, ok := actor(c)
	if !ok {
		return badInput(c, "staff id")
	}
	if err := h.Orders.Confirm(id, who); err != nil {
		return fail(c, "order.confirm", err)
	}
	applog.Audit(c, "order.confirm", map[string]any{"order_id": id})
	return c.JSON(fiber.Map{"ok": true})
}

func (h *OrderHandler) Reject(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "order id")
	}
	who, ok := actor(c)
	if !ok {
		return badInput(c, "staff id")
	}
	if err := h.Orders.Reject(id, who); err != nil {
		return fail(c, "order.reject", err)
	}
	applog.Audit(c, "order.reject", map[string]any{"order_id": id})
	return c.JSON(fiber.Map{"ok": true})
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "order id")
	}
	order, lines, err := h.Orders.Get(id)
	if err != nil {
		return fail(c, "order.get", err)
	}
	return c.JSON(fiber.Map{"order": order, "items": lines})
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	patientID, ok := validate.ID(c.Query("patientId"))
	if !ok {
		return badInput(c, "patient id")
	}
	orders, err := h.Orders.ListByPatient(patientID)
	if err != nil {
		return fail(c, "order.list", err)
	}
	return c.JSON(orders)
}
