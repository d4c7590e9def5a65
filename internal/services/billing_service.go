package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"clinicore/internal/domain"
	"clinicore/internal/repos"
)

// BillingService creates the financial record. Every invoice write is
// paired with exactly one payment write in the same transaction, and in
// this system every invoice is born PAID. Paid/partial order status is
// derived from the invoice sum, never stored independently.
type BillingService struct {
	DB      *sqlx.DB
	Billing *repos.BillingRepo
	Orders  *repos.OrderRepo
	Appts   *repos.ScheduleRepo
}

func NewBillingService(db *sqlx.DB, billing *repos.BillingRepo, orders *repos.OrderRepo, appts *repos.ScheduleRepo) *BillingService {
	return &BillingService{DB: db, Billing: billing, Orders: orders, Appts: appts}
}

// InvoiceAppointment records an invoice+payment pair against an
// appointment. The amount is not capped at the appointment fee;
// overpayment stays on the ledger as a credit.
func (s *BillingService) InvoiceAppointment(appointmentID string, amount decimal.Decimal, method, actor string) (domain.Invoice, error) {
	var inv domain.Invoice
	err := repos.InTx(s.DB, func(tx *sqlx.Tx) error {
		if _, err := s.Appts.Appointment(tx, appointmentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("appointment %s: %w", appointmentID, domain.ErrNotFound)
			}
			return err
		}
		inv = domain.Invoice{
			ID:            uuid.NewString(),
			AppointmentID: appointmentID,
			Total:         amount,
			Status:        domain.InvoicePaid,
		}
		return s.writePair(tx, inv, method, actor)
	})
	return inv, err
}

// InvoiceOrder records an invoice+payment pair against an order and
// rederives the order's paid status from the cumulative PAID total:
// PARTIALLY_PAID while 0 < paid < total, COMPLETED once paid >= total.
func (s *BillingService) InvoiceOrder(orderID string, amount decimal.Decimal, method, actor string) (domain.Invoice, error) {
	var inv domain.Invoice
	err := repos.InTx(s.DB, func(tx *sqlx.Tx) error {
		order, err := s.Orders.Get(tx, orderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
			}
			return err
		}
		switch order.Status {
		case domain.OrderCart, domain.OrderCancelled:
			return &domain.TransitionError{Entity: "order", ID: orderID, From: string(order.Status), Op: "invoice"}
		}

		inv = domain.Invoice{
			ID:      uuid.NewString(),
			OrderID: orderID,
			Total:   amount,
			Status:  domain.InvoicePaid,
		}
		if err := s.writePair(tx, inv, method, actor); err != nil {
			return err
		}

		paid, err := s.Billing.TotalPaid(tx, orderID)
		if err != nil {
			return err
		}
		var status domain.OrderStatus
		switch {
		case paid.GreaterThanOrEqual(order.Total):
			status = domain.OrderCompleted
		case paid.IsPositive():
			status = domain.OrderPartiallyPaid
		default:
			return nil
		}
		_, err = s.Orders.SetStatus(tx, orderID, status,
			domain.OrderConfirmed, domain.OrderPartiallyPaid, domain.OrderPending, domain.OrderCompleted)
		return err
	})
	return inv, err
}

func (s *BillingService) writePair(tx *sqlx.Tx, inv domain.Invoice, method, actor string) error {
	if err := s.Billing.InsertInvoice(tx, inv); err != nil {
		return err
	}
	return s.Billing.InsertPayment(tx, domain.Payment{
		ID:        uuid.NewString(),
		InvoiceID: inv.ID,
		Amount:    inv.Total,
		Method:    method,
		Actor:     actor,
	})
}

// TotalPaid sums PAID invoices for an appointment or order id. A target
// with no invoices yields zero, not an error.
func (s *BillingService) TotalPaid(targetID string) (decimal.Decimal, error) {
	return s.Billing.TotalPaid(s.DB, targetID)
}

// CreditBalance is how far payments exceed the order total, zero when
// not overpaid.
func (s *BillingService) CreditBalance(orderID string) (decimal.Decimal, error) {
	order, err := s.Orders.Get(s.DB, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
		}
		return decimal.Zero, err
	}
	paid, err := s.Billing.TotalPaid(s.DB, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	credit := paid.Sub(order.Total)
	if credit.IsNegative() {
		return decimal.Zero, nil
	}
	return credit, nil
}

func (s *BillingService) Payments(invoiceID string) ([]domain.Payment, error) {
	return s.Billing.Payments(s.DB, invoiceID)
}
