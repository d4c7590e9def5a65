package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"clinicore/internal/domain"
	"clinicore/internal/repos"
)

// SchedulerService manages slot availability and the appointment state
// machine: PENDING -> CONFIRMED -> COMPLETED, with cancellation from
// PENDING (Cancel) or any active state (ForceCancel).
type SchedulerService struct {
	DB       *sqlx.DB
	Schedule *repos.ScheduleRepo
}

func NewSchedulerService(db *sqlx.DB, schedule *repos.ScheduleRepo) *SchedulerService {
	return &SchedulerService{DB: db, Schedule: schedule}
}

// Book claims the slot and creates a PENDING appointment in one
// transaction. A slot already taken fails with ErrSlotUnavailable and
// creates nothing.
func (s *SchedulerService) Book(patientID, providerID, slotID, date, purpose, createdBy string) (domain.Appointment, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("bad date %q: %w", date, domain.ErrValidation)
	}

	var appt domain.Appointment
	err = repos.InTx(s.DB, func(tx *sqlx.Tx) error {
		slot, err := s.Schedule.Slot(tx, slotID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("slot %s: %w", slotID, domain.ErrNotFound)
			}
			return err
		}
		if slot.ProviderID != providerID {
			return fmt.Errorf("slot %s belongs to another provider: %w", slotID, domain.ErrValidation)
		}
		if slot.Weekday != int(day.Weekday()) {
			return fmt.Errorf("slot %s does not fall on %s: %w", slotID, date, domain.ErrValidation)
		}

		ok, err := s.Schedule.ClaimSlot(tx, slotID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("slot %s: %w", slotID, domain.ErrSlotUnavailable)
		}

		appt = domain.Appointment{
			ID:         uuid.NewString(),
			PatientID:  patientID,
			ProviderID: providerID,
			SlotID:     slotID,
			Date:       date,
			Purpose:    purpose,
			Status:     domain.ApptPending,
			CreatedBy:  createdBy,
		}
		return s.Schedule.InsertAppointment(tx, appt)
	})
	return appt, err
}

// Confirm moves PENDING -> CONFIRMED and records the fee.
func (s *SchedulerService) Confirm(id string, fee decimal.Decimal) error {
	return repos.InTx(s.DB, func(tx *sqlx.Tx) error {
		appt, err := s.appointment(tx, id)
		if err != nil {
			return err
		}
		ok, err := s.Schedule.SetConfirmed(tx, id, fee.String())
		if err != nil {
			return err
		}
		if !ok {
			return &domain.TransitionError{Entity: "appointment", ID: id, From: string(appt.Status), Op: "confirm"}
		}
		return nil
	})
}

// Cancel is the guarded cancel: PENDING only. Confirmed appointments
// need ForceCancel.
func (s *SchedulerService) Cancel(id string) error {
	return s.cancel(id, "cancel", domain.ApptPending)
}

// ForceCancel cancels from any active state, including CONFIRMED and
// COMPLETED. The slot is released either way.
func (s *SchedulerService) ForceCancel(id string) error {
	return s.cancel(id, "force-cancel", domain.ApptPending, domain.ApptConfirmed, domain.ApptCompleted)
}

func (s *SchedulerService) cancel(id, op string, from ...domain.AppointmentStatus) error {
	return repos.InTx(s.DB, func(tx *sqlx.Tx) error {
		appt, err := s.appointment(tx, id)
		if err != nil {
			return err
		}
		ok, err := s.Schedule.SetStatus(tx, id, domain.ApptCancelled, from...)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.TransitionError{Entity: "appointment", ID: id, From: string(appt.Status), Op: op}
		}
		// The slot opens back up regardless of how far the appointment got.
		return s.Schedule.ReleaseSlot(tx, appt.SlotID)
	})
}

// Complete moves CONFIRMED -> COMPLETED and optionally records an
// advisory prescription. Inventory is untouched; dispensing goes through
// order fulfillment.
func (s *SchedulerService) Complete(id, providerID, productID, notes string) error {
	return repos.InTx(s.DB, func(tx *sqlx.Tx) error {
		appt, err := s.appointment(tx, id)
		if err != nil {
			return err
		}
		ok, err := s.Schedule.SetStatus(tx, id, domain.ApptCompleted, domain.ApptConfirmed)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.TransitionError{Entity: "appointment", ID: id, From: string(appt.Status), Op: "complete"}
		}
		if productID == "" && notes == "" {
			return nil
		}
		return s.Schedule.InsertPrescription(tx, domain.Prescription{
			ID:            uuid.NewString(),
			AppointmentID: id,
			ProviderID:    providerID,
			ProductID:     productID,
			Notes:         notes,
		})
	})
}

// Availability returns the provider's slots for the date's weekday,
// minus slots already holding a non-cancelled appointment on that exact
// date.
func (s *SchedulerService) Availability(providerID, date string) ([]domain.TimeSlot, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("bad date %q: %w", date, domain.ErrValidation)
	}

	slots, err := s.Schedule.SlotsForWeekday(s.DB, providerID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}
	booked, err := s.Schedule.BookedSlotIDs(s.DB, providerID, date)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(booked))
	for _, id := range booked {
		taken[id] = true
	}

	free := slots[:0]
	for _, slot := range slots {
		if !taken[slot.ID] {
			free = append(free, slot)
		}
	}
	return free, nil
}

// AddSlot registers a new weekly slot for a provider.
func (s *SchedulerService) AddSlot(providerID string, weekday int, start, end string) (domain.TimeSlot, error) {
	slot := domain.TimeSlot{
		ID:         uuid.NewString(),
		ProviderID: providerID,
		Weekday:    weekday,
		StartTime:  start,
		EndTime:    end,
		Available:  true,
	}
	return slot, s.Schedule.InsertSlot(s.DB, slot)
}

func (s *SchedulerService) Get(id string) (domain.Appointment, error) {
	return s.appointment(s.DB, id)
}

func (s *SchedulerService) Upcoming(providerID, fromDate string) ([]domain.Appointment, error) {
	return s.Schedule.Upcoming(s.DB, providerID, fromDate)
}

func (s *SchedulerService) appointment(q sqlx.Queryer, id string) (domain.Appointment, error) {
	appt, err := s.Schedule.Appointment(q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return appt, fmt.Errorf("appointment %s: %w", id, domain.ErrNotFound)
	}
	return appt, err
}
