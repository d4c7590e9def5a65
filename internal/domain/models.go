package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID        string          `db:"id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Stock     int             `db:"stock"`
	Active    bool            `db:"active"`
	CreatedAt string          `db:"created_at"`
	UpdatedAt string          `db:"updated_at"`
}

// StockReason classifies one inventory movement. Callers pass it
// explicitly; nothing is inferred from free-text notes.
type StockReason string

const (
	ReasonRestock    StockReason = "RESTOCK"
	ReasonSale       StockReason = "SALE"
	ReasonAdjustment StockReason = "ADJUSTMENT"
)

// InventoryTransaction is an append-only record of one signed stock
// change. A product's current stock always equals the sum of its deltas.
type InventoryTransaction struct {
	ID        string      `db:"id"`
	ProductID string      `db:"product_id"`
	Delta     int         `db:"delta"`
	Reason    StockReason `db:"reason"`
	Actor     string      `db:"actor"`
	CreatedAt string      `db:"created_at"`
}

// TimeSlot is a fixed interval in a provider's recurring weekly
// schedule. Weekday follows time.Weekday (Sunday = 0).
type TimeSlot struct {
	ID         string `db:"id"`
	ProviderID string `db:"provider_id"`
	Weekday    int    `db:"weekday"`
	StartTime  string `db:"start_time"` // HH:MM
	EndTime    string `db:"end_time"`   // HH:MM
	Available  bool   `db:"available"`
}

type AppointmentStatus string

const (
	ApptPending   AppointmentStatus = "PENDING"
	ApptConfirmed AppointmentStatus = "CONFIRMED"
	ApptCompleted AppointmentStatus = "COMPLETED"
	ApptCancelled AppointmentStatus = "CANCELLED"
)

type Appointment struct {
	ID         string              `db:"id"`
	PatientID  string              `db:"patient_id"`
	ProviderID string              `db:"provider_id"`
	SlotID     string              `db:"slot_id"`
	Date       string              `db:"date"` // YYYY-MM-DD
	Purpose    string              `db:"purpose"`
	Status     AppointmentStatus   `db:"status"`
	Fee        decimal.NullDecimal `db:"fee"` // set at confirmation
	CreatedBy  string              `db:"created_by"`
	CreatedAt  string              `db:"created_at"`
	UpdatedAt  string              `db:"updated_at"`
}

// Prescription is advisory only; it never moves inventory.
type Prescription struct {
	ID            string `db:"id"`
	AppointmentID string `db:"appointment_id"`
	ProviderID    string `db:"provider_id"`
	ProductID     string `db:"product_id"` // optional
	Notes         string `db:"notes"`
	CreatedAt     string `db:"created_at"`
}

type OrderStatus string

const (
	OrderCart          OrderStatus = "CART"
	OrderPending       OrderStatus = "PENDING"
	OrderConfirmed     OrderStatus = "CONFIRMED"
	OrderPartiallyPaid OrderStatus = "PARTIALLY_PAID"
	OrderCompleted     OrderStatus = "COMPLETED"
	OrderCancelled     OrderStatus = "CANCELLED"
)

type Order struct {
	ID              string          `db:"id"`
	PatientID       string          `db:"patient_id"`
	Status          OrderStatus     `db:"status"`
	DeliveryAddress string          `db:"delivery_address"`
	Total           decimal.Decimal `db:"total"` // snapshot taken at checkout
	CreatedAt       string          `db:"created_at"`
	UpdatedAt       string          `db:"updated_at"`
}

type OrderItem struct {
	OrderID   string          `db:"order_id"`
	ProductID string          `db:"product_id"`
	Qty       int             `db:"qty"`
	UnitPrice decimal.Decimal `db:"unit_price"` // snapshot taken at add time
}

type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "PENDING"
	InvoicePaid    InvoiceStatus = "PAID"
)

// Invoice references exactly one of an appointment or an order.
// Never edited after creation.
type Invoice struct {
	ID            string          `db:"id"`
	AppointmentID string          `db:"appointment_id"`
	OrderID       string          `db:"order_id"`
	Total         decimal.Decimal `db:"total"`
	Status        InvoiceStatus   `db:"status"`
	CreatedAt     string          `db:"created_at"`
}

type Payment struct {
	ID        string          `db:"id"`
	InvoiceID string          `db:"invoice_id"`
	Amount    decimal.Decimal `db:"amount"`
	Method    string          `db:"method"`
	Actor     string          `db:"actor"`
	CreatedAt string          `db:"created_at"`
}
