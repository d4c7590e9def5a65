package repos

import (
	"github.com/jmoiron/sqlx"

	"clinicore/internal/domain"
)

// ScheduleRepo covers weekly slots, appointments and prescriptions.
type ScheduleRepo struct{}

func NewScheduleRepo() *ScheduleRepo { return &ScheduleRepo{} }

// ---------- slots ----------

func (r *ScheduleRepo) InsertSlot(e sqlx.Execer, s domain.TimeSlot) error {
	_, err := e.Exec(`
	  INSERT INTO time_slots(id, provider_id, weekday, start_time, end_time, available)
	  VALUES (?, ?, ?, ?, ?, 1)
	`, s.ID, s.ProviderID, s.Weekday, s.StartTime, s.EndTime)
	return err
}

func (r *ScheduleRepo) Slot(q sqlx.Queryer, id string) (domain.TimeSlot, error) {
	var s domain.TimeSlot
	err := sqlx.Get(q, &s, `
	  SELECT id, provider_id, weekday, start_time, end_time, available
	  FROM time_slots WHERE id = ?
	`, id)
	return s, err
}

// ClaimSlot flips available 1 -> 0. Returns false when the slot was
// already taken; a concurrent booking loses the race here instead of
// double-booking.
func (r *ScheduleRepo) ClaimSlot(e sqlx.Execer, id string) (bool, error) {
	res, err := e.Exec(`UPDATE time_slots SET available = 0 WHERE id = ? AND available = 1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *ScheduleRepo) ReleaseSlot(e sqlx.Execer, id string) error {
	_, err := e.Exec(`UPDATE time_slots SET available = 1 WHERE id = ?`, id)
	return err
}

func (r *ScheduleRepo) SlotsForWeekday(q sqlx.Queryer, providerID string, weekday int) ([]domain.TimeSlot, error) {
	var out []domain.TimeSlot
	err := sqlx.Select(q, &out, `
	  SELECT id, provider_id, weekday, start_time, end_time, available
	  FROM time_slots
	  WHERE provider_id = ? AND weekday = ?
	  ORDER BY start_time
	`, providerID, weekday)
	return out, err
}

// BookedSlotIDs lists slots holding a non-cancelled appointment on the
// given date.
func (r *ScheduleRepo) BookedSlotIDs(q sqlx.Queryer, providerID, date string) ([]string, error) {
	var out []string
	err := sqlx.Select(q, &out, `
	  SELECT slot_id FROM appointments
	  WHERE provider_id = ? AND date = ? AND status <> 'CANCELLED'
	`, providerID, date)
	return out, err
}

// ---------- appointments ----------

func (r *ScheduleRepo) InsertAppointment(e sqlx.Execer, a domain.Appointment) error {
	_, err := e.Exec(`
	  INSERT INTO appointments(id, patient_id, provider_id, slot_id, date, purpose, status, created_by, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, 'PENDING', ?, CURRENT_TIMESTAMP)
	`, a.ID, a.PatientID, a.ProviderID, a.SlotID, a.Date, a.Purpose, a.CreatedBy)
	return err
}

func (r *ScheduleRepo) Appointment(q sqlx.Queryer, id string) (domain.Appointment, error) {
	var a domain.Appointment
	err := sqlx.Get(q, &a, `
	  SELECT id, patient_id, provider_id, slot_id, date, COALESCE(purpose,'') AS purpose,
	         status, fee, created_by, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM appointments WHERE id = ?
	`, id)
	return a, err
}

// SetStatus transitions status only when the row is still in one of the
// allowed source states. Returns false when the guard rejected the write.
func (r *ScheduleRepo) SetStatus(e sqlx.Execer, id string, to domain.AppointmentStatus, from ...domain.AppointmentStatus) (bool, error) {
	query, args, err := sqlx.In(`
	  UPDATE appointments SET status = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND status IN (?)
	`, string(to), id, from)
	if err != nil {
		return false, err
	}
	res, err := e.Exec(query, args...)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SetConfirmed is the PENDING -> CONFIRMED transition plus the fee write,
// in one guarded statement.
func (r *ScheduleRepo) SetConfirmed(e sqlx.Execer, id string, fee string) (bool, error) {
	res, err := e.Exec(`
	  UPDATE appointments SET status = 'CONFIRMED', fee = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND status = 'PENDING'
	`, fee, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *ScheduleRepo) Upcoming(q sqlx.Queryer, providerID, fromDate string) ([]domain.Appointment, error) {
	var out []domain.Appointment
	err := sqlx.Select(q, &out, `
	  SELECT id, patient_id, provider_id, slot_id, date, COALESCE(purpose,'') AS purpose,
	         status, fee, created_by, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM appointments
	  WHERE provider_id = ? AND date >= ? AND status <> 'CANCELLED'
	  ORDER BY date
	`, providerID, fromDate)
	return out, err
}

// ---------- prescriptions ----------

func (r *ScheduleRepo) InsertPrescription(e sqlx.Execer, p domain.Prescription) error {
	var productID any
	if p.ProductID != "" {
		productID = p.ProductID
	}
	_, err := e.Exec(`
	  INSERT INTO prescriptions(id, appointment_id, provider_id, product_id, notes, created_at)
	  VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.ID, p.AppointmentID, p.ProviderID, productID, p.Notes)
	return err
}

func (r *ScheduleRepo) Prescriptions(q sqlx.Queryer, appointmentID string) ([]domain.Prescription, error) {
	var out []domain.Prescription
	err := sqlx.Select(q, &out, `
	  SELECT id, appointment_id, provider_id, COALESCE(product_id,'') AS product_id,
	         COALESCE(notes,'') AS notes, created_at
	  FROM prescriptions
	  WHERE appointment_id = ?
	  ORDER BY datetime(created_at)
	`, appointmentID)
	return out, err
}
