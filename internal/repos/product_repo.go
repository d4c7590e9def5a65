package repos

import (
	"github.com/jmoiron/sqlx"

	"clinicore/internal/domain"
)

// ProductRepo reads and mutates product rows. Methods take the unit of
// work (a *sqlx.DB or an open *sqlx.Tx) explicitly so composite
// operations can run every step inside one transaction.
type ProductRepo struct{}

func NewProductRepo() *ProductRepo { return &ProductRepo{} }

func (r *ProductRepo) Get(q sqlx.Queryer, id string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.Get(q, &p, `
	  SELECT id, name, price, stock, active, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE id = ?
	`, id)
	return p, err
}

func (r *ProductRepo) List(q sqlx.Queryer) ([]domain.Product, error) {
	var out []domain.Product
	err := sqlx.Select(q, &out, `
	  SELECT id, name, price, stock, active, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE active = 1
	  ORDER BY LOWER(name)
	`)
	return out, err
}

func (r *ProductRepo) Stock(q sqlx.Queryer, id string) (int, error) {
	var stock int
	err := sqlx.Get(q, &stock, `SELECT stock FROM products WHERE id = ?`, id)
	return stock, err
}

// ApplyDelta adds a signed delta to stock, guarded so the row never goes
// negative even if stock changed since the caller's read. Returns false
// when the guard rejected the write.
func (r *ProductRepo) ApplyDelta(e sqlx.Execer, id string, delta int) (bool, error) {
	res, err := e.Exec(`
	  UPDATE products
	  SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND stock + ? >= 0
	`, delta, id, delta)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// LowStock lists active products at or below the threshold, lowest first.
func (r *ProductRepo) LowStock(q sqlx.Queryer, threshold int) ([]domain.Product, error) {
	var out []domain.Product
	err := sqlx.Select(q, &out, `
	  SELECT id, name, price, stock, active, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE active = 1 AND stock <= ?
	  ORDER BY stock, LOWER(name)
	`, threshold)
	return out, err
}
