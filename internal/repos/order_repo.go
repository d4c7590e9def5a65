package repos

import (
	"github.com/jmoiron/sqlx"

	"clinicore/internal/domain"
)

// OrderRepo covers carts (orders in status CART), placed orders and
// their line items.
type OrderRepo struct{}

func NewOrderRepo() *OrderRepo { return &OrderRepo{} }

// OrderLine is an item row joined with its product name, used by cart
// and order detail views.
type OrderLine struct {
	ProductID string `db:"product_id"`
	Name      string `db:"name"`
	Qty       int    `db:"qty"`
	UnitPrice string `db:"unit_price"`
}

func (r *OrderRepo) Get(q sqlx.Queryer, id string) (domain.Order, error) {
	var o domain.Order
	err := sqlx.Get(q, &o, `
	  SELECT id, patient_id, status, COALESCE(delivery_address,'') AS delivery_address,
	         total, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM orders WHERE id = ?
	`, id)
	return o, err
}

// OpenCart finds the patient's order in status CART, if any.
func (r *OrderRepo) OpenCart(q sqlx.Queryer, patientID string) (domain.Order, error) {
	var o domain.Order
	err := sqlx.Get(q, &o, `
	  SELECT id, patient_id, status, COALESCE(delivery_address,'') AS delivery_address,
	         total, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM orders WHERE patient_id = ? AND status = 'CART'
	`, patientID)
	return o, err
}

func (r *OrderRepo) CreateCart(e sqlx.Execer, id, patientID string) error {
	_, err := e.Exec(`
	  INSERT INTO orders(id, patient_id, status, total, created_at)
	  VALUES (?, ?, 'CART', 0, CURRENT_TIMESTAMP)
	`, id, patientID)
	return err
}

func (r *OrderRepo) Delete(e sqlx.Execer, id string) error {
	_, err := e.Exec(`DELETE FROM orders WHERE id = ?`, id)
	return err
}

// ---------- items ----------

// ItemQty returns the quantity already in the order for a product, zero
// when the line does not exist.
func (r *OrderRepo) ItemQty(q sqlx.Queryer, orderID, productID string) (int, error) {
	var qty int
	err := sqlx.Get(q, &qty, `
	  SELECT COALESCE(SUM(qty), 0) FROM order_items
	  WHERE order_id = ? AND product_id = ?
	`, orderID, productID)
	return qty, err
}

// UpsertItem adds qty to an existing line or inserts a new one with the
// current price snapshot. An existing line keeps its original snapshot.
func (r *OrderRepo) UpsertItem(e sqlx.Execer, orderID, productID string, qty int, unitPrice string) error {
	_, err := e.Exec(`
	  INSERT INTO order_items(order_id, product_id, qty, unit_price)
	  VALUES (?, ?, ?, ?)
	  ON CONFLICT(order_id, product_id) DO UPDATE SET qty = qty + excluded.qty
	`, orderID, productID, qty, unitPrice)
	return err
}

func (r *OrderRepo) DeleteItem(e sqlx.Execer, orderID, productID string) (bool, error) {
	res, err := e.Exec(`DELETE FROM order_items WHERE order_id = ? AND product_id = ?`, orderID, productID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *OrderRepo) CountItems(q sqlx.Queryer, orderID string) (int, error) {
	var n int
	err := sqlx.Get(q, &n, `SELECT COUNT(*) FROM order_items WHERE order_id = ?`, orderID)
	return n, err
}

func (r *OrderRepo) Items(q sqlx.Queryer, orderID string) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	err := sqlx.Select(q, &out, `
	  SELECT order_id, product_id, qty, unit_price
	  FROM order_items WHERE order_id = ?
	  ORDER BY product_id
	`, orderID)
	return out, err
}

func (r *OrderRepo) Lines(q sqlx.Queryer, orderID string) ([]OrderLine, error) {
	var out []OrderLine
	err := sqlx.Select(q, &out, `
	  SELECT oi.product_id, p.name, oi.qty, oi.unit_price
	  FROM order_items oi JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id = ?
	  ORDER BY p.name
	`, orderID)
	return out, err
}

// ---------- status ----------

// SetCheckedOut moves CART -> PENDING, writing the address and the total
// snapshot in the same guarded statement.
func (r *OrderRepo) SetCheckedOut(e sqlx.Execer, id, address, total string) (bool, error) {
	res, err := e.Exec(`
	  UPDATE orders
	  SET status = 'PENDING', delivery_address = ?, total = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND status = 'CART'
	`, address, total, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SetStatus transitions status only from the allowed source states.
// Returns false when the guard rejected the write.
func (r *OrderRepo) SetStatus(e sqlx.Execer, id string, to domain.OrderStatus, from ...domain.OrderStatus) (bool, error) {
	query, args, err := sqlx.In(`
	  UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP
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

func (r *OrderRepo) ListByPatient(q sqlx.Queryer, patientID string) ([]domain.Order, error) {
	var out []domain.Order
	err := sqlx.Select(q, &out, `
	  SELECT id, patient_id, status, COALESCE(delivery_address,'') AS delivery_address,
	         total, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM orders
	  WHERE patient_id = ? AND status <> 'CART'
	  ORDER BY datetime(created_at) DESC
	`, patientID)
	return out, err
}
