package services_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"clinicore/internal/domain"
)

func TestAddItem_CumulativeStockGuard(t *testing.T) {
	db := newTestDB(t)
	addProduct(t, db, "para", "4.50", 5)
	svc := newOrderService(db)

	if err := svc.AddItem("pat-1", "para", 3); err != nil {
		t.Fatal(err)
	}
	// cumulative 6 exceeds stock 5
	err := svc.AddItem("pat-1", "para", 3)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}

	cv, err := svc.Cart("pat-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 1 || cv.Lines[0].Qty != 3 {
		t.Fatalf("cart should still hold 3, got %+v", cv.Lines)
	}
}

func TestAddItem_NothingReserved(t *testing.T) {
	db := newTestDB(t)
	addProduct(t, db, "para", "4.50", 5)
	svc := newOrderService(db)

	if err := svc.AddItem("pat-1", "para", 5); err != nil {
		t.Fatal(err)
	}
	var stock int
	if err := db.Get(&stock, `SELECT stock FROM products WHERE id='para'`); err != nil {
		t.Fatal(err)
	}
	if stock != 5 {
		t.Fatalf("adding to cart must not touch stock, got %d", stock)
	}
}

func TestRemoveItem_LastItemDeletesCart(t *testing.T) {
	db := newTestDB(t)
	addProduct(t, db, "para", "4.50", 5)
	svc := newOrderService(db)

	if err := svc.AddItem("pat-1", "para", 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.RemoveItem("pat-1", "para"); err != nil {
		t.Fatal(err)
	}

	cv, err := svc.Cart("pat-1")
	if err != nil {
		t.Fatal(err)
	}
	if cv.OrderID != "" {
		t.Fatalf("empty cart should be deleted, got %+v", cv)
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("want 0 orders, got %d", n)
	}
}

func TestCheckout_SnapshotsTotal(t *testing.T) {
	db := newTestDB(t)
	addProduct(t, db, "para", "4.50", 10)
	addProduct(t, db, "band", "3.75", 10)
	svc := newOrderService(db)

	if err := svc.AddItem("pat-1", "para", 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddItem("pat-1", "band", 4); err != nil {
		t.Fatal(err)
	}

	order, err := svc.Checkout("pat-1", "12 Main St")
	if err != nil {
		t.Fatal(err)
	}
	if order.Status != domain.OrderPending {
		t.Fatalf("want PENDING, got %s", order.Status)
	}
	want := decimal.RequireFromString("24.00") // 2*4.50 + 4*3.75
	if !order.Total.Equal(want) {
		t.Fatalf("want total %s, got %s", want, order.Total)
	}

	// still no deduction before confirmation
	var stock int
	if err := db.Get(&stock, `SELECT stock FROM products WHERE id='para'`); err != nil {
		t.Fatal(err)
	}
	if stock != 10 {
		t.Fatalf("want stock 10, got %d", stock)
	}
}

func TestCheckout_ListsEveryViolation(t *testing.T) {
	db := newTestDB(t)
	addProduct(t, db, "para", "4.50", 5)
	addProduct(t, db, "band", "3.75", 5)
	svc := newOrderService(db)
	inv := newInventoryService(db)

	if err := svc.AddItem("pat-1", "para", 4); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddItem("pat-1", "band", 4); err != nil {
		t.Fatal(err)
	}

	// stock moved since the items were added
	if _, err := inv.RemoveStock("para", 3, domain.ReasonSale, "nurse-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := inv.RemoveStock("band", 2, domain.ReasonSale, "nurse-1"); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Checkout("pat-1", "12 Main St")
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}
	var ce *domain.CheckoutStockError
	if !errors.As(err, &ce) || len(ce.Violations) != 2 {
		t.Fatalf("want both violations listed, got %v", err)
	}

	// the cart survives for the caller to fix up
	cv, err := svc.Cart("pat-1")
	if err != nil {
		t.Fatal(err)
	}
	if cv.OrderID == "" || len(cv.Lines) != 2 {
		t.Fatalf("cart should be intact, got %+v", cv)
	}
}

func TestConfirm_AllOrNothing(t *testing.T) {
	db := newTestDB(t)
	addProduct(t, db, "para", "4.50", 10)
	addProduct(t, db, "band", "3.75", 10)
	svc := newOrderService(db)
	inv := newInventoryService(db)

	if err := svc.AddItem("pat-1", "para", 1); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddItem("pat-1", "band", 4); err != nil {
		t.Fatal(err)
	}
	order, err := svc.Checkout("pat-1", "12 Main St")
	if err != nil {
		t.Fatal(err)
	}

	// stock for the second line collapses after checkout
	if _, err := inv.RemoveStock("band", 8, domain.ReasonSale, "nurse-1"); err != nil {
		t.Fatal(err)
	}

	err = svc.Confirm(order.ID, "staff-1")
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}

	// no partial deduction: the first line's decrement was rolled back
	var paraStock, bandStock int
	if err := db.Get(&paraStock, `SELECT stock FROM products WHERE id='para'`); err != nil {
		t.Fatal(err)
	}
	if err := db.Get(&bandStock, `SELECT stock FROM products WHERE id='band'`); err != nil {
		t.Fatal(err)
	}
	if paraStock != 10 || bandStock != 2 {
		t.Fatalf("want stock 10/2, got %d/%d", paraStock, bandStock)
	}
	got, _, err := svc.Get(order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.OrderPending {
		t.Fatalf("order must stay PENDING, got %s", got.Status)
	}
}

func TestConfirm_DeductsEveryLine(t *testing.T) {
	db := newTestDB(t)
	addProduct(t, db, "para", "4.50", 10)
	addProduct(t, db, "band", "3.75", 10)
	svc := newOrderService(db)

	if err := svc.AddItem("pat-1", "para", 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddItem("pat-1", "band", 3); err != nil {
		t.Fatal(err)
	}
	order, err := svc.Checkout("pat-1", "12 Main St")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Confirm(order.ID, "staff-1"); err != nil {
		t.Fatal(err)
	}

	got, _, err := svc.Get(order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.OrderConfirmed {
		t.Fatalf("want CONFIRMED, got %s", got.Status)
	}
	var paraStock, bandStock int
	if err := db.Get(&paraStock, `SELECT stock FROM products WHERE id='para'`); err != nil {
		t.Fatal(err)
	}
	if err := db.Get(&bandStock, `SELECT stock FROM products WHERE id='band'`); err != nil {
		t.Fatal(err)
	}
	if paraStock != 8 || bandStock != 7 {
		t.Fatalf("want stock 8/7, got %d/%d", paraStock, bandStock)
	}

	// each deduction landed in the ledger as a SALE
	var sales int
	if err := db.Get(&sales, `SELECT COUNT(*) FROM inventory_transactions WHERE reason='SALE'`); err != nil {
		t.Fatal(err)
	}
	if sales != 2 {
		t.Fatalf("want 2 SALE entries, got %d", sales)
	}

	// confirming twice is refused
	if err := svc.Confirm(order.ID, "staff-1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
}

func TestReject_PendingOnly(t *testing.T) {
	db := newTestDB(t)
	addProduct(t, db, "para", "4.50", 10)
	svc := newOrderService(db)

	if err := svc.AddItem("pat-1", "para", 1); err != nil {
		t.Fatal(err)
	}
	order, err := svc.Checkout("pat-1", "12 Main St")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Reject(order.ID, "staff-1"); err != nil {
		t.Fatal(err)
	}
	got, _, err := svc.Get(order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.OrderCancelled {
		t.Fatalf("want CANCELLED, got %s", got.Status)
	}
	if err := svc.Reject(order.ID, "staff-1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
}

func TestCheckout_EmptyOrMissingCart(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	if _, err := svc.Checkout("pat-1", "12 Main St"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
