package store

import "context"

// sales.product_id and supplies.product_id have no foreign key: the logs are
// append-only history and must survive product deletion.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	category    TEXT NOT NULL,
	price       NUMERIC(12, 2) NOT NULL,
	quantity    INTEGER NOT NULL DEFAULT 0,
	min_stock   INTEGER NOT NULL DEFAULT 10,
	barcode     TEXT UNIQUE,
	description TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS customers (
	id              BIGSERIAL PRIMARY KEY,
	name            TEXT NOT NULL,
	phone           TEXT NOT NULL,
	email           TEXT,
	discount        NUMERIC(5, 2) NOT NULL DEFAULT 0,
	total_purchases NUMERIC(14, 2) NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sales (
	id          BIGSERIAL PRIMARY KEY,
	product_id  BIGINT NOT NULL,
	customer_id BIGINT,
	quantity    INTEGER NOT NULL,
	price       NUMERIC(12, 2) NOT NULL,
	total       NUMERIC(14, 2) NOT NULL,
	date        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (date);
CREATE INDEX IF NOT EXISTS idx_sales_product_id ON sales (product_id);

CREATE TABLE IF NOT EXISTS supplies (
	id         BIGSERIAL PRIMARY KEY,
	supplier   TEXT NOT NULL,
	product_id BIGINT NOT NULL,
	quantity   INTEGER NOT NULL,
	cost       NUMERIC(14, 2) NOT NULL,
	date       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_supplies_date ON supplies (date);
`

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}
