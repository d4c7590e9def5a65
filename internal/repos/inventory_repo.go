package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"clinicore/internal/domain"
)

// InventoryRepo owns the append-only transaction ledger. Rows are never
// updated or deleted.
type InventoryRepo struct{}

func NewInventoryRepo() *InventoryRepo { return &InventoryRepo{} }

func (r *InventoryRepo) Append(e sqlx.Execer, productID string, delta int, reason domain.StockReason, actor string) error {
	_, err := e.Exec(`
	  INSERT INTO inventory_transactions(id, product_id, delta, reason, actor, created_at)
	  VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, uuid.NewString(), productID, delta, string(reason), actor)
	return err
}

// History returns the product's transactions most-recent-first. The
// rowid tiebreak keeps same-second entries in reverse insert order.
func (r *InventoryRepo) History(q sqlx.Queryer, productID string) (*sqlx.Rows, error) {
	return q.Queryx(`
	  SELECT id, product_id, delta, reason, actor, created_at
	  FROM inventory_transactions
	  WHERE product_id = ?
	  ORDER BY datetime(created_at) DESC, rowid DESC
	`, productID)
}

// SumDeltas recomputes stock from the ledger; used for reconciliation.
func (r *InventoryRepo) SumDeltas(q sqlx.Queryer, productID string) (int, error) {
	var sum int
	err := sqlx.Get(q, &sum, `
	  SELECT COALESCE(SUM(delta), 0) FROM inventory_transactions WHERE product_id = ?
	`, productID)
	return sum, err
}
