package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"clinicore/internal/repos"
	"clinicore/internal/services"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// a second pool connection would get its own empty :memory: database
	db.SetMaxOpenConns(1)
	if err := repos.EnsureSchema(db); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// addProduct inserts a product and, when stocked, the matching RESTOCK
// ledger entry so stock equals the delta sum from the start.
func addProduct(t *testing.T, db *sqlx.DB, id, price string, stock int) {
	t.Helper()
	db.MustExec(`INSERT INTO products(id,name,price,stock) VALUES (?,?,?,?)`,
		id, "Product "+id, price, stock)
	if stock != 0 {
		db.MustExec(`INSERT INTO inventory_transactions(id,product_id,delta,reason,actor)
		  VALUES (?,?,?,'RESTOCK','fixture')`, "fix-"+id, id, stock)
	}
}

func addSlot(t *testing.T, db *sqlx.DB, id, providerID string, weekday int) {
	t.Helper()
	db.MustExec(`INSERT INTO time_slots(id,provider_id,weekday,start_time,end_time,available)
	  VALUES (?,?,?,'09:00','09:30',1)`, id, providerID, weekday)
}

func newInventoryService(db *sqlx.DB) *services.InventoryService {
	return services.NewInventoryService(db, repos.NewProductRepo(), repos.NewInventoryRepo())
}

func newSchedulerService(db *sqlx.DB) *services.SchedulerService {
	return services.NewSchedulerService(db, repos.NewScheduleRepo())
}

func newOrderService(db *sqlx.DB) *services.OrderService {
	return services.NewOrderService(db, repos.NewOrderRepo(), repos.NewProductRepo(), newInventoryService(db))
}

func newBillingService(db *sqlx.DB) *services.BillingService {
	return services.NewBillingService(db, repos.NewBillingRepo(), repos.NewOrderRepo(), repos.NewScheduleRepo())
}
