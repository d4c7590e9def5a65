package services_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"clinicore/internal/domain"
	"clinicore/internal/repos"
)

// 2026-09-07 is a Monday (weekday 1).
const monday = "2026-09-07"

func TestBook_ClaimsSlot(t *testing.T) {
	db := newTestDB(t)
	addSlot(t, db, "slot-1", "dr-chen", 1)
	svc := newSchedulerService(db)

	appt, err := svc.Book("pat-1", "dr-chen", "slot-1", monday, "checkup", "desk-1")
	if err != nil {
		t.Fatal(err)
	}
	if appt.Status != domain.ApptPending {
		t.Fatalf("want PENDING, got %s", appt.Status)
	}

	slot, err := repos.NewScheduleRepo().Slot(db, "slot-1")
	if err != nil {
		t.Fatal(err)
	}
	if slot.Available {
		t.Fatal("slot should be claimed")
	}
}

func TestBook_SlotUnavailable(t *testing.T) {
	db := newTestDB(t)
	addSlot(t, db, "slot-1", "dr-chen", 1)
	svc := newSchedulerService(db)

	if _, err := svc.Book("pat-1", "dr-chen", "slot-1", monday, "checkup", "desk-1"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Book("pat-2", "dr-chen", "slot-1", monday, "checkup", "desk-1")
	if !errors.Is(err, domain.ErrSlotUnavailable) {
		t.Fatalf("want ErrSlotUnavailable, got %v", err)
	}

	// the failed booking created nothing
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM appointments`); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("want 1 appointment, got %d", n)
	}
}

func TestBook_RejectsMismatches(t *testing.T) {
	db := newTestDB(t)
	addSlot(t, db, "slot-1", "dr-chen", 1)
	svc := newSchedulerService(db)

	if _, err := svc.Book("pat-1", "dr-osei", "slot-1", monday, "", "desk-1"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("wrong provider: want ErrValidation, got %v", err)
	}
	// 2026-09-08 is a Tuesday; the slot is a Monday slot
	if _, err := svc.Book("pat-1", "dr-chen", "slot-1", "2026-09-08", "", "desk-1"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("wrong weekday: want ErrValidation, got %v", err)
	}
	if _, err := svc.Book("pat-1", "dr-chen", "missing", monday, "", "desk-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing slot: want ErrNotFound, got %v", err)
	}
}

func TestConfirmThenForceCancel(t *testing.T) {
	db := newTestDB(t)
	addSlot(t, db, "slot-1", "dr-chen", 1)
	svc := newSchedulerService(db)

	appt, err := svc.Book("pat-1", "dr-chen", "slot-1", monday, "checkup", "desk-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Confirm(appt.ID, decimal.RequireFromString("120.00")); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(appt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.ApptConfirmed {
		t.Fatalf("want CONFIRMED, got %s", got.Status)
	}
	if !got.Fee.Valid || !got.Fee.Decimal.Equal(decimal.RequireFromString("120.00")) {
		t.Fatalf("want fee 120.00, got %+v", got.Fee)
	}

	// the guarded cancel refuses a confirmed appointment
	if err := svc.Cancel(appt.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}

	// the hard cancel does not
	if err := svc.ForceCancel(appt.ID); err != nil {
		t.Fatal(err)
	}
	got, err = svc.Get(appt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.ApptCancelled {
		t.Fatalf("want CANCELLED, got %s", got.Status)
	}
	slot, err := repos.NewScheduleRepo().Slot(db, "slot-1")
	if err != nil {
		t.Fatal(err)
	}
	if !slot.Available {
		t.Fatal("slot should be released on cancel")
	}
}

func TestCancel_PendingReleasesSlot(t *testing.T) {
	db := newTestDB(t)
	addSlot(t, db, "slot-1", "dr-chen", 1)
	svc := newSchedulerService(db)

	appt, err := svc.Book("pat-1", "dr-chen", "slot-1", monday, "", "desk-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Cancel(appt.ID); err != nil {
		t.Fatal(err)
	}
	slot, err := repos.NewScheduleRepo().Slot(db, "slot-1")
	if err != nil {
		t.Fatal(err)
	}
	if !slot.Available {
		t.Fatal("slot should be released")
	}
}

func TestConfirm_OnlyFromPending(t *testing.T) {
	db := newTestDB(t)
	addSlot(t, db, "slot-1", "dr-chen", 1)
	svc := newSchedulerService(db)

	appt, err := svc.Book("pat-1", "dr-chen", "slot-1", monday, "", "desk-1")
	if err != nil {
		t.Fatal(err)
	}
	fee := decimal.RequireFromString("80")
	if err := svc.Confirm(appt.ID, fee); err != nil {
		t.Fatal(err)
	}
	if err := svc.Confirm(appt.ID, fee); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
}

func TestComplete_WithPrescription(t *testing.T) {
	db := newTestDB(t)
	addSlot(t, db, "slot-1", "dr-chen", 1)
	addProduct(t, db, "amoxi", "11.20", 24)
	svc := newSchedulerService(db)

	appt, err := svc.Book("pat-1", "dr-chen", "slot-1", monday, "infection", "desk-1")
	if err != nil {
		t.Fatal(err)
	}

	// completing a pending appointment is refused
	if err := svc.Complete(appt.ID, "dr-chen", "amoxi", "twice daily"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}

	if err := svc.Confirm(appt.ID, decimal.RequireFromString("60")); err != nil {
		t.Fatal(err)
	}
	if err := svc.Complete(appt.ID, "dr-chen", "amoxi", "twice daily"); err != nil {
		t.Fatal(err)
	}

	scripts, err := repos.NewScheduleRepo().Prescriptions(db, appt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts) != 1 || scripts[0].ProductID != "amoxi" {
		t.Fatalf("want one prescription for amoxi, got %+v", scripts)
	}

	// prescriptions are advisory: inventory is untouched
	var stock int
	if err := db.Get(&stock, `SELECT stock FROM products WHERE id='amoxi'`); err != nil {
		t.Fatal(err)
	}
	if stock != 24 {
		t.Fatalf("want stock 24, got %d", stock)
	}
}

func TestUpcoming_OrderedAndFiltered(t *testing.T) {
	db := newTestDB(t)
	addSlot(t, db, "slot-1", "dr-chen", 1)
	addSlot(t, db, "slot-2", "dr-chen", 1)
	addSlot(t, db, "slot-3", "dr-chen", 1)
	svc := newSchedulerService(db)

	// 2026-09-14 and 2026-09-21 are the following Mondays
	late, err := svc.Book("pat-1", "dr-chen", "slot-1", "2026-09-21", "", "desk-1")
	if err != nil {
		t.Fatal(err)
	}
	early, err := svc.Book("pat-2", "dr-chen", "slot-2", monday, "", "desk-1")
	if err != nil {
		t.Fatal(err)
	}
	cancelled, err := svc.Book("pat-3", "dr-chen", "slot-3", "2026-09-14", "", "desk-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Cancel(cancelled.ID); err != nil {
		t.Fatal(err)
	}

	appts, err := svc.Upcoming("dr-chen", monday)
	if err != nil {
		t.Fatal(err)
	}
	if len(appts) != 2 || appts[0].ID != early.ID || appts[1].ID != late.ID {
		t.Fatalf("want [%s %s], got %+v", early.ID, late.ID, appts)
	}

	// from after the first date drops it
	appts, err = svc.Upcoming("dr-chen", "2026-09-08")
	if err != nil {
		t.Fatal(err)
	}
	if len(appts) != 1 || appts[0].ID != late.ID {
		t.Fatalf("want [%s], got %+v", late.ID, appts)
	}
}

func TestAvailability_ExcludesBookedOnDate(t *testing.T) {
	db := newTestDB(t)
	addSlot(t, db, "slot-1", "dr-chen", 1)
	addSlot(t, db, "slot-2", "dr-chen", 1)
	addSlot(t, db, "slot-other-day", "dr-chen", 2)
	svc := newSchedulerService(db)

	if _, err := svc.Book("pat-1", "dr-chen", "slot-1", monday, "", "desk-1"); err != nil {
		t.Fatal(err)
	}

	free, err := svc.Availability("dr-chen", monday)
	if err != nil {
		t.Fatal(err)
	}
	if len(free) != 1 || free[0].ID != "slot-2" {
		t.Fatalf("want [slot-2], got %+v", free)
	}

	// a cancelled appointment frees the slot for that date again
	var apptID string
	if err := db.Get(&apptID, `SELECT id FROM appointments WHERE slot_id='slot-1'`); err != nil {
		t.Fatal(err)
	}
	if err := svc.Cancel(apptID); err != nil {
		t.Fatal(err)
	}
	free, err = svc.Availability("dr-chen", monday)
	if err != nil {
		t.Fatal(err)
	}
	if len(free) != 2 {
		t.Fatalf("want 2 free slots, got %+v", free)
	}
}
