package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"clinicore/internal/domain"
)

// BillingRepo owns invoices and payments. Both tables are append-only;
// there are no update or delete methods on purpose.
type BillingRepo struct{}

func NewBillingRepo() *BillingRepo { return &BillingRepo{} }

func (r *BillingRepo) InsertInvoice(e sqlx.Execer, inv domain.Invoice) error {
	var apptID, orderID any
	if inv.AppointmentID != "" {
		apptID = inv.AppointmentID
	}
	if inv.OrderID != "" {
		orderID = inv.OrderID
	}
	_, err := e.Exec(`
	  INSERT INTO invoices(id, appointment_id, order_id, total, status, created_at)
	  VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, inv.ID, apptID, orderID, inv.Total, string(inv.Status))
	return err
}

func (r *BillingRepo) InsertPayment(e sqlx.Execer, p domain.Payment) error {
	_, err := e.Exec(`
	  INSERT INTO payments(id, invoice_id, amount, method, actor, created_at)
	  VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.ID, p.InvoiceID, p.Amount, p.Method, p.Actor)
	return err
}

// PaidInvoices lists PAID invoices whose appointment or order matches
// the target id.
func (r *BillingRepo) PaidInvoices(q sqlx.Queryer, targetID string) ([]domain.Invoice, error) {
	var out []domain.Invoice
	err := sqlx.Select(q, &out, `
	  SELECT id, COALESCE(appointment_id,'') AS appointment_id, COALESCE(order_id,'') AS order_id,
	         total, status, created_at
	  FROM invoices
	  WHERE status = 'PAID' AND (appointment_id = ? OR order_id = ?)
	  ORDER BY datetime(created_at)
	`, targetID, targetID)
	return out, err
}

// TotalPaid sums PAID invoice totals for a target. Zero when none exist.
func (r *BillingRepo) TotalPaid(q sqlx.Queryer, targetID string) (decimal.Decimal, error) {
	invoices, err := r.PaidInvoices(q, targetID)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, inv := range invoices {
		sum = sum.Add(inv.Total)
	}
	return sum, nil
}

func (r *BillingRepo) Payments(q sqlx.Queryer, invoiceID string) ([]domain.Payment, error) {
	var out []domain.Payment
	err := sqlx.Select(q, &out, `
	  SELECT id, invoice_id, amount, method, actor, created_at
	  FROM payments
	  WHERE invoice_id = ?
	  ORDER BY datetime(created_at)
	`, invoiceID)
	return out, err
}
