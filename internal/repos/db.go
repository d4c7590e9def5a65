package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	// Seed a baseline catalog and schedules if the DB is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

// InTx runs fn inside one transaction: every write inside it commits
// together or is discarded together.
func InTx(db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func EnsureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(LOWER(name));

-- Inventory transactions (append-only; never updated or deleted)
CREATE TABLE IF NOT EXISTS inventory_transactions(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  delta INTEGER NOT NULL,
  reason TEXT NOT NULL CHECK (reason IN ('RESTOCK','SALE','ADJUSTMENT')),
  actor TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_invtx_product ON inventory_transactions(product_id);

-- Weekly schedule slots
CREATE TABLE IF NOT EXISTS time_slots(
  id TEXT PRIMARY KEY,
  provider_id TEXT NOT NULL,
  weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
  start_time TEXT NOT NULL,
  end_time TEXT NOT NULL,
  available INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_slots_provider ON time_slots(provider_id, weekday);

-- Appointments
CREATE TABLE IF NOT EXISTS appointments(
  id TEXT PRIMARY KEY,
  patient_id TEXT NOT NULL,
  provider_id TEXT NOT NULL,
  slot_id TEXT NOT NULL REFERENCES time_slots(id) ON DELETE RESTRICT,
  date TEXT NOT NULL,
  purpose TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING'
    CHECK (status IN ('PENDING','CONFIRMED','COMPLETED','CANCELLED')),
  fee NUMERIC,
  created_by TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_appts_provider_date ON appointments(provider_id, date);
CREATE INDEX IF NOT EXISTS idx_appts_slot ON appointments(slot_id);

CREATE TABLE IF NOT EXISTS prescriptions(
  id TEXT PRIMARY KEY,
  appointment_id TEXT NOT NULL REFERENCES appointments(id) ON DELETE RESTRICT,
  provider_id TEXT NOT NULL,
  product_id TEXT REFERENCES products(id) ON DELETE RESTRICT,
  notes TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Orders (status CART is the open, pre-checkout order)
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  patient_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'CART'
    CHECK (status IN ('CART','PENDING','CONFIRMED','PARTIALLY_PAID','COMPLETED','CANCELLED')),
  delivery_address TEXT,
  total NUMERIC NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
-- At most one open cart per patient
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_open_cart
  ON orders(patient_id) WHERE status = 'CART';
CREATE INDEX IF NOT EXISTS idx_orders_patient ON orders(patient_id);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  unit_price NUMERIC NOT NULL,
  PRIMARY KEY (order_id, product_id)
);

-- Invoices & payments (append-only financial record)
CREATE TABLE IF NOT EXISTS invoices(
  id TEXT PRIMARY KEY,
  appointment_id TEXT REFERENCES appointments(id) ON DELETE RESTRICT,
  order_id TEXT REFERENCES orders(id) ON DELETE RESTRICT,
  total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'PAID' CHECK (status IN ('PENDING','PAID')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  CHECK ((appointment_id IS NULL) <> (order_id IS NULL))
);
CREATE INDEX IF NOT EXISTS idx_invoices_appt ON invoices(appointment_id);
CREATE INDEX IF NOT EXISTS idx_invoices_order ON invoices(order_id);

CREATE TABLE IF NOT EXISTS payments(
  id TEXT PRIMARY KEY,
  invoice_id TEXT NOT NULL REFERENCES invoices(id) ON DELETE RESTRICT,
  amount NUMERIC NOT NULL,
  method TEXT NOT NULL,
  actor TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_payments_invoice ON payments(invoice_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting baseline catalog and schedules")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(id,name,price,stock) VALUES
	  ('paracetamol-500','Paracetamol 500mg (box of 20)','4.50',0),
	  ('amoxicillin-250','Amoxicillin 250mg (box of 12)','11.20',0),
	  ('bandage-roll','Elastic Bandage Roll','3.75',0),
	  ('thermometer-dig','Digital Thermometer','12.90',0)`)

	// Stock arrives through the ledger so the delta sum matches from day one
	seedStock := []struct {
		id  string
		qty int
	}{
		{"paracetamol-500", 40},
		{"amoxicillin-250", 24},
		{"bandage-roll", 60},
		{"thermometer-dig", 10},
	}
	for _, s := range seedStock {
		tx.MustExec(`UPDATE products SET stock = ? WHERE id = ?`, s.qty, s.id)
		tx.MustExec(`INSERT INTO inventory_transactions(id,product_id,delta,reason,actor)
		  VALUES (?,?,?,'RESTOCK','seed')`, "seed-"+s.id, s.id, s.qty)
	}

	tx.MustExec(`INSERT INTO time_slots(id,provider_id,weekday,start_time,end_time,available) VALUES
	  ('slot-chen-mon-09','dr-chen',1,'09:00','09:30',1),
	  ('slot-chen-mon-10','dr-chen',1,'10:00','10:30',1),
	  ('slot-chen-wed-14','dr-chen',3,'14:00','14:30',1),
	  ('slot-osei-tue-11','dr-osei',2,'11:00','11:30',1),
	  ('slot-osei-fri-15','dr-osei',5,'15:00','15:30',1)`)

	return tx.Commit()
}
