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

// OrderService drives the cart -> order lifecycle. Stock is checked but
// never reserved before confirmation; confirmation deducts all items or
// none.
type OrderService struct {
	DB        *sqlx.DB
	Orders    *repos.OrderRepo
	Products  *repos.ProductRepo
	Inventory *InventoryService
}

func NewOrderService(db *sqlx.DB, orders *repos.OrderRepo, products *repos.ProductRepo, inv *InventoryService) *OrderService {
	return &OrderService{DB: db, Orders: orders, Products: products, Inventory: inv}
}

// AddItem puts qty of a product into the patient's open cart, creating
// the cart on first add. The combined cart quantity must fit in current
// stock, but nothing is reserved here; checkout and confirmation
// re-check.
func (s *OrderService) AddItem(patientID, productID string, qty int) error {
	return repos.InTx(s.DB, func(tx *sqlx.Tx) error {
		p, err := s.Products.Get(tx, productID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
			}
			return err
		}

		cart, err := s.Orders.OpenCart(tx, patientID)
		if errors.Is(err, sql.ErrNoRows) {
			cart = domain.Order{ID: uuid.NewString(), PatientID: patientID, Status: domain.OrderCart}
			if err := s.Orders.CreateCart(tx, cart.ID, patientID); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		have, err := s.Orders.ItemQty(tx, cart.ID, productID)
		if err != nil {
			return err
		}
		if have+qty > p.Stock {
			return &domain.StockError{ProductID: productID, Requested: have + qty, Available: p.Stock}
		}

		return s.Orders.UpsertItem(tx, cart.ID, productID, qty, p.Price.String())
	})
}

// RemoveItem drops a line from the open cart. Removing the last line
// deletes the now-empty cart.
func (s *OrderService) RemoveItem(patientID, productID string) error {
	return repos.InTx(s.DB, func(tx *sqlx.Tx) error {
		cart, err := s.Orders.OpenCart(tx, patientID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("cart for patient %s: %w", patientID, domain.ErrNotFound)
			}
			return err
		}
		ok, err := s.Orders.DeleteItem(tx, cart.ID, productID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("item %s in cart %s: %w", productID, cart.ID, domain.ErrNotFound)
		}
		n, err := s.Orders.CountItems(tx, cart.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return s.Orders.Delete(tx, cart.ID)
		}
		return nil
	})
}

// CartView is the open cart with line subtotals and a running total.
type CartView struct {
	OrderID string
	Lines   []repos.OrderLine
	Total   decimal.Decimal
}

func (s *OrderService) Cart(patientID string) (CartView, error) {
	cart, err := s.Orders.OpenCart(s.DB, patientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CartView{}, nil // no open cart is an empty cart, not a failure
		}
		return CartView{}, err
	}
	lines, err := s.Orders.Lines(s.DB, cart.ID)
	if err != nil {
		return CartView{}, err
	}
	total := decimal.Zero
	for _, l := range lines {
		price, err := decimal.NewFromString(l.UnitPrice)
		if err != nil {
			return CartView{}, err
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	return CartView{OrderID: cart.ID, Lines: lines, Total: total}, nil
}

// Checkout re-validates every line against current stock (it may have
// moved since the items were added), snapshots the total and moves the
// cart to PENDING. Every violating line is reported, not just the first.
func (s *OrderService) Checkout(patientID, deliveryAddress string) (domain.Order, error) {
	var out domain.Order
	err := repos.InTx(s.DB, func(tx *sqlx.Tx) error {
		cart, err := s.Orders.OpenCart(tx, patientID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("cart for patient %s: %w", patientID, domain.ErrNotFound)
			}
			return err
		}
		items, err := s.Orders.Items(tx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("cart %s is empty: %w", cart.ID, domain.ErrValidation)
		}

		var violations []domain.StockError
		total := decimal.Zero
		for _, it := range items {
			stock, err := s.Products.Stock(tx, it.ProductID)
			if err != nil {
				return err
			}
			if it.Qty > stock {
				violations = append(violations, domain.StockError{
					ProductID: it.ProductID, Requested: it.Qty, Available: stock,
				})
				continue
			}
			total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Qty))))
		}
		if len(violations) > 0 {
			return &domain.CheckoutStockError{Violations: violations}
		}

		ok, err := s.Orders.SetCheckedOut(tx, cart.ID, deliveryAddress, total.String())
		if err != nil {
			return err
		}
		if !ok {
			return &domain.TransitionError{Entity: "order", ID: cart.ID, From: string(cart.Status), Op: "checkout"}
		}
		out = cart
		out.Status = domain.OrderPending
		out.DeliveryAddress = deliveryAddress
		out.Total = total
		return nil
	})
	return out, err
}

// Confirm deducts stock for every line and moves PENDING -> CONFIRMED.
// All-or-nothing: the first line that cannot be deducted aborts the
// whole transaction, leaving the order PENDING and stock untouched.
func (s *OrderService) Confirm(orderID, processedBy string) error {
	return repos.InTx(s.DB, func(tx *sqlx.Tx) error {
		order, err := s.order(tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderPending {
			return &domain.TransitionError{Entity: "order", ID: orderID, From: string(order.Status), Op: "confirm"}
		}

		items, err := s.Orders.Items(tx, orderID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if _, err := s.Inventory.adjustInTx(tx, it.ProductID, -it.Qty, domain.ReasonSale, processedBy); err != nil {
				return err
			}
		}

		ok, err := s.Orders.SetStatus(tx, orderID, domain.OrderConfirmed, domain.OrderPending)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.TransitionError{Entity: "order", ID: orderID, From: string(order.Status), Op: "confirm"}
		}
		return nil
	})
}

// Reject moves PENDING -> CANCELLED.
func (s *OrderService) Reject(orderID, processedBy string) error {
	return repos.InTx(s.DB, func(tx *sqlx.Tx) error {
		order, err := s.order(tx, orderID)
		if err != nil {
			return err
		}
		ok, err := s.Orders.SetStatus(tx, orderID, domain.OrderCancelled, domain.OrderPending)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.TransitionError{Entity: "order", ID: orderID, From: string(order.Status), Op: "reject"}
		}
		return nil
	})
}

func (s *OrderService) Get(orderID string) (domain.Order, []repos.OrderLine, error) {
	order, err := s.order(s.DB, orderID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	lines, err := s.Orders.Lines(s.DB, orderID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	return order, lines, nil
}

func (s *OrderService) ListByPatient(patientID string) ([]domain.Order, error) {
	return s.Orders.ListByPatient(s.DB, patientID)
}

func (s *OrderService) order(q sqlx.Queryer, id string) (domain.Order, error) {
	order, err := s.Orders.Get(q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return order, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return order, err
}
