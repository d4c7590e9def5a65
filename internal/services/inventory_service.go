package services

import (
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/jmoiron/sqlx"

	"clinicore/internal/domain"
	"clinicore/internal/repos"
)

// InventoryService is the only writer of product stock. Every mutation
// pairs the stock write with one ledger append inside one transaction,
// so stock always equals the sum of the product's transaction deltas.
type InventoryService struct {
	DB       *sqlx.DB
	Products *repos.ProductRepo
	Ledger   *repos.InventoryRepo
}

func NewInventoryService(db *sqlx.DB, products *repos.ProductRepo, ledger *repos.InventoryRepo) *InventoryService {
	return &InventoryService{DB: db, Products: products, Ledger: ledger}
}

// AdjustStock applies a signed delta and returns the new stock level.
// A negative delta that would take stock below zero fails with
// ErrInsufficientStock and leaves nothing applied.
func (s *InventoryService) AdjustStock(productID string, delta int, reason domain.StockReason, actor string) (int, error) {
	var newStock int
	err := repos.InTx(s.DB, func(tx *sqlx.Tx) error {
		n, err := s.adjustInTx(tx, productID, delta, reason, actor)
		if err != nil {
			return err
		}
		newStock = n
		return nil
	})
	return newStock, err
}

// adjustInTx is the shared core for AdjustStock and order confirmation:
// adjustInTx runs the whole adjustment against the caller's transaction.
func (s *InventoryService) adjustInTx(tx *sqlx.Tx, productID string, delta int, reason domain.StockReason, actor string) (int, error) {
	stock, err := s.Products.Stock(tx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		return 0, err
	}
	if delta < 0 && stock+delta < 0 {
		return 0, &domain.StockError{ProductID: productID, Requested: -delta, Available: stock}
	}

	ok, err := s.Products.ApplyDelta(tx, productID, delta)
	if err != nil {
		return 0, err
	}
	if !ok {
		// Guard tripped: the row moved under us since the read.
		return 0, &domain.StockError{ProductID: productID, Requested: -delta, Available: stock}
	}
	if err := s.Ledger.Append(tx, productID, delta, reason, actor); err != nil {
		return 0, err
	}
	return stock + delta, nil
}

// Restock adds stock with reason RESTOCK.
func (s *InventoryService) Restock(productID string, qty int, actor string) (int, error) {
	return s.AdjustStock(productID, qty, domain.ReasonRestock, actor)
}

// RemoveStock removes stock. Reason must be SALE or ADJUSTMENT; RESTOCK
// never removes.
func (s *InventoryService) RemoveStock(productID string, qty int, reason domain.StockReason, actor string) (int, error) {
	if reason != domain.ReasonSale && reason != domain.ReasonAdjustment {
		reason = domain.ReasonAdjustment
	}
	return s.AdjustStock(productID, -qty, reason, actor)
}

func (s *InventoryService) Stock(productID string) (int, error) {
	stock, err := s.Products.Stock(s.DB, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	return stock, err
}

// History yields the product's transactions most-recent-first. The
// sequence is lazy and restartable: each range reruns the query, and
// breaking out early closes it.
func (s *InventoryService) History(productID string) iter.Seq2[domain.InventoryTransaction, error] {
	return func(yield func(domain.InventoryTransaction, error) bool) {
		rows, err := s.Ledger.History(s.DB, productID)
		if err != nil {
			yield(domain.InventoryTransaction{}, err)
			return
		}
		defer rows.Close()
		for rows.Next() {
			var t domain.InventoryTransaction
			if err := rows.StructScan(&t); err != nil {
				yield(domain.InventoryTransaction{}, err)
				return
			}
			if !yield(t, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.InventoryTransaction{}, err)
		}
	}
}

// LowStock lists active products at or below the threshold.
func (s *InventoryService) LowStock(threshold int) ([]domain.Product, error) {
	return s.Products.LowStock(s.DB, threshold)
}
