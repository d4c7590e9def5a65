package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "clinicore/internal/log"
	"clinicore/internal/services"
	"clinicore/internal/validate"
)

type SchedulerHandler struct {
	Sched *services.SchedulerService
}

type bookRequest struct {
	PatientID  string `json:"patient_id"`
	ProviderID string `json:"provider_id"`
	SlotID     string `json:"slot_id"`
	Date       string `json:"date"`
	Purpose    string `json:"purpose"`
}

func (h *SchedulerHandler) Book(c *fiber.Ctx) error {
	who, ok := actor(c)
	if !ok {
		return badInput(c, "staff id")
	}
	var req bookRequest
	if err := c.BodyParser(&req); err != nil {
		return badInput(c, "body")
	}
	patientID, ok := validate.ID(req.PatientID)
	if !ok {
		return badInput(c, "patient id")
	}
	providerID, ok := validate.ID(req.ProviderID)
	if !ok {
		return badInput(c, "provider id")
	}
	slotID, ok := validate.ID(req.SlotID)
	if !ok {
		return badInput(c, "slot id")
	}
	date, ok := validate.Date(req.Date)
	if !ok {
		return badInput(c, "date")
	}

	appt, err := h.Sched.Book(patientID, providerID, slotID, date, req.Purpose, who)
	if err != nil {
		return fail(c, "appointment.book", err)
	}
	applog.Audit(c, "appointment.book", map[string]any{"appointment_id": appt.ID, "slot_id": slotID, "date": date})
	return c.Status(fiber.StatusCreated).JSON(appt)
}

type confirmRequest struct {
	Fee string `json:"fee"`
}

func (h *SchedulerHandler) Confirm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "appointment id")
	}
	var req confirmRequest
	if err := c.BodyParser(&req); err != nil {
		return badInput(c, "body")
	}
	fee, ok := validate.Amount(req.Fee)
	if !ok {
		return badInput(c, "fee")
	}
	if err := h.Sched.Confirm(id, fee); err != nil {
		return fail(c, "appointment.confirm", err)
	}
	applog.Audit(c, "appointment.confirm", map[string]any{"appointment_id": id, "fee": fee.String()})
	return c.JSON(fiber.Map{"ok": true})
}

func (h *SchedulerHandler) Cancel(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "appointment id")
	}
	if err := h.Sched.Cancel(id); err != nil {
		return fail(c, "appointment.cancel", err)
	}
	applog.Audit(c, "appointment.cancel", map[string]any{"appointment_id": id})
	return c.JSON(fiber.Map{"ok": true})
}

func (h *SchedulerHandler) ForceCancel(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "appointment id")
	}
	if err := h.Sched.ForceCancel(id); err != nil {
		return fail(c, "appointment.force_cancel", err)
	}
	applog.Audit(c, "appointment.force_cancel", map[string]any{"appointment_id": id})
	return c.JSON(fiber.Map{"ok": true})
}

type completeRequest struct {
	ProviderID string `json:"provider_id"`
	ProductID  string `json:"product_id"`
	Notes      string `json:"notes"`
}

func (h *SchedulerHandler) Complete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "appointment id")
	}
	var req completeRequest
	if err := c.BodyParser(&req); err != nil {
		return badInput(c, "body")
	}
	providerID, ok := validate.ID(req.ProviderID)
	if !ok {
		return badInput(c, "provider id")
	}
	if req.ProductID != "" {
		if _, ok := validate.ID(req.ProductID); !ok {
			return badInput(c, "product id")
		}
	}
	if err := h.Sched.Complete(id, providerID, req.ProductID, req.Notes); err != nil {
		return fail(c, "appointment.complete", err)
	}
	applog.Audit(c, "appointment.complete", map[string]any{"appointment_id": id, "product_id": req.ProductID})
	return c.JSON(fiber.Map{"ok": true})
}

func (h *SchedulerHandler) Availability(c *fiber.Ctx) error {
	providerID, ok := validate.ID(c.Query("providerId"))
	if !ok {
		return badInput(c, "provider id")
	}
	date, ok := validate.Date(c.Query("date"))
	if !ok {
		return badInput(c, "date")
	}
	slots, err := h.Sched.Availability(providerID, date)
	if err != nil {
		return fail(c, "availability", err)
	}
	return c.JSON(slots)
}

type addSlotRequest struct {
	ProviderID string `json:"provider_id"`
	Weekday    string `json:"weekday"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

func (h *SchedulerHandler) AddSlot(c *fiber.Ctx) error {
	var req addSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return badInput(c, "body")
	}
	providerID, ok := validate.ID(req.ProviderID)
	if !ok {
		return badInput(c, "provider id")
	}
	weekday, ok := validate.Weekday(req.Weekday)
	if !ok {
		return badInput(c, "weekday")
	}
	start, ok := validate.TimeOfDay(req.Start)
	if !ok {
		return badInput(c, "start")
	}
	end, ok := validate.TimeOfDay(req.End)
	if !ok {
		return badInput(c, "end")
	}

	slot, err := h.Sched.AddSlot(providerID, weekday, start, end)
	if err != nil {
		return fail(c, "slot.add", err)
	}
	return c.Status(fiber.StatusCreated).JSON(slot)
}

func (h *SchedulerHandler) Upcoming(c *fiber.Ctx) error {
	providerID, ok := validate.ID(c.Query("providerId"))
	if !ok {
		return badInput(c, "provider id")
	}
	from, ok := validate.Date(c.Query("from"))
	if !ok {
		return badInput(c, "from")
	}
	appts, err := h.Sched.Upcoming(providerID, from)
	if err != nil {
		return fail(c, "appointment.upcoming", err)
	}
	return c.JSON(appts)
}

func (h *SchedulerHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "appointment id")
	}
	appt, err := h.Sched.Get(id)
	if err != nil {
		return fail(c, "appointment.get", err)
	}
	return c.JSON(appt)
}
