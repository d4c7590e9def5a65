package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "clinicore/internal/log"
	"clinicore/internal/services"
	"clinicore/internal/validate"
)

type BillingHandler struct {
	Billing *services.BillingService
}

type invoiceRequest struct {
	AppointmentID string `json:"appointment_id"`
	OrderID       string `json:"order_id"`
	Amount        string `json:"amount"`
	Method        string `json:"method"`
}

func (h *BillingHandler) InvoiceAppointment(c *fiber.Ctx) error {
	who, ok := actor(c)
	if !ok {
		return badInput(c, "staff id")
	}
	var req invoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return badInput(c, "body")
	}
	apptID, ok := validate.ID(req.AppointmentID)
	if !ok {
		return badInput(c, "appointment id")
	}
	amount, ok := validate.Amount(req.Amount)
	if !ok {
		return badInput(c, "amount")
	}
	method, ok := validate.Method(req.Method)
	if !ok {
		return badInput(c, "method")
	}

	inv, err := h.Billing.InvoiceAppointment(apptID, amount, method, who)
	if err != nil {
		return fail(c, "billing.invoice.appointment", err)
	}
	applog.Audit(c, "billing.invoice.appointment", map[string]any{
		"invoice_id": inv.ID, "appointment_id": apptID, "amount": amount.String(), "method": method,
	})
	return c.Status(fiber.StatusCreated).JSON(inv)
}

func (h *BillingHandler) InvoiceOrder(c *fiber.Ctx) error {
	who, ok := actor(c)
	if !ok {
		return badInput(c, "staff id")
	}
	var req invoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return badInput(c, "body")
	}
	orderID, ok := validate.ID(req.OrderID)
	if !ok {
		return badInput(c, "order id")
	}
	amount, ok := validate.Amount(req.Amount)
	if !ok {
		return badInput(c, "amount")
	}
	method, ok := validate.Method(req.Method)
	if !ok {
		return badInput(c, "method")
	}

	inv, err := h.Billing.InvoiceOrder(orderID, amount, method, who)
	if err != nil {
		return fail(c, "billing.invoice.order", err)
	}
	applog.Audit(c, "billing.invoice.order", map[string]any{
		"invoice_id": inv.ID, "order_id": orderID, "amount": amount.String(), "method": method,
	})
	return c.Status(fiber.StatusCreated).JSON(inv)
}

func (h *BillingHandler) TotalPaid(c *fiber.Ctx) error {
	targetID, ok := validate.ID(c.Params("targetId"))
	if !ok {
		return badInput(c, "target id")
	}
	paid, err := h.Billing.TotalPaid(targetID)
	if err != nil {
		return fail(c, "billing.total_paid", err)
	}
	return c.JSON(fiber.Map{"target_id": targetID, "total_paid": paid.String()})
}

func (h *BillingHandler) Payments(c *fiber.Ctx) error {
	invoiceID, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "invoice id")
	}
	payments, err := h.Billing.Payments(invoiceID)
	if err != nil {
		return fail(c, "billing.payments", err)
	}
	return c.JSON(payments)
}

func (h *BillingHandler) Credit(c *fiber.Ctx) error {
	orderID, ok := validate.ID(c.Params("orderId"))
	if !ok {
		return badInput(c, "order id")
	}
	credit, err := h.Billing.CreditBalance(orderID)
	if err != nil {
		return fail(c, "billing.credit", err)
	}
	return c.JSON(fiber.Map{"order_id": orderID, "credit": credit.String()})
}
