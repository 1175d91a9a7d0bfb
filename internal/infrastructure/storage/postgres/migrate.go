package postgres

import (
	"context"
	"fmt"

	"aushadhi/pkg/logger"
)

// schema holds the DDL for all tables, applied in order.
// Statements are idempotent so startup can run them unconditionally.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS cat_items (
		id UUID PRIMARY KEY,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INTEGER NOT NULL DEFAULT 1,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		unit_type TEXT NOT NULL,
		sub_unit_label TEXT NOT NULL DEFAULT '',
		sub_units_per_unit BIGINT NOT NULL CHECK (sub_units_per_unit >= 1)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_cat_items_code
		ON cat_items (code) WHERE NOT deletion_mark`,

	`CREATE TABLE IF NOT EXISTS stock_batches (
		id UUID PRIMARY KEY,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		item_id UUID NOT NULL REFERENCES cat_items (id),
		batch_number TEXT NOT NULL,
		total_quantity BIGINT NOT NULL CHECK (total_quantity >= 0),
		selling_price NUMERIC(18,2) NOT NULL DEFAULT 0,
		mrp NUMERIC(18,2) NOT NULL DEFAULT 0,
		manufacturing_date TIMESTAMPTZ,
		expiry_date TIMESTAMPTZ,
		purchase_date TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_stock_batches_item_number
		ON stock_batches (item_id, batch_number) WHERE NOT deletion_mark`,
	`CREATE INDEX IF NOT EXISTS idx_stock_batches_expiry
		ON stock_batches (expiry_date) WHERE NOT deletion_mark`,

	`CREATE TABLE IF NOT EXISTS doc_sale_invoices (
		id UUID PRIMARY KEY,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		number TEXT NOT NULL UNIQUE,
		date TIMESTAMPTZ NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		patient_ref TEXT NOT NULL DEFAULT '',
		discount_percent NUMERIC(8,4) NOT NULL DEFAULT 0,
		sub_total NUMERIC(18,2) NOT NULL,
		discount_amount NUMERIC(18,2) NOT NULL,
		total_amount NUMERIC(18,2) NOT NULL,
		paid_amount NUMERIC(18,2) NOT NULL,
		remaining_amount NUMERIC(18,2) NOT NULL,
		status TEXT NOT NULL,
		voided BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_doc_sale_invoices_date
		ON doc_sale_invoices (date DESC)`,

	`CREATE TABLE IF NOT EXISTS doc_sale_invoice_lines (
		line_id UUID PRIMARY KEY,
		invoice_id UUID NOT NULL REFERENCES doc_sale_invoices (id) ON DELETE CASCADE,
		line_no INTEGER NOT NULL,
		batch_id UUID NOT NULL REFERENCES stock_batches (id),
		item_id UUID NOT NULL REFERENCES cat_items (id),
		selling_unit_type TEXT NOT NULL,
		total_unit BIGINT NOT NULL,
		sub_units_per_unit BIGINT NOT NULL,
		price NUMERIC(18,2) NOT NULL,
		total_sub_units BIGINT NOT NULL,
		total_price NUMERIC(18,2) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_doc_sale_invoice_lines_invoice
		ON doc_sale_invoice_lines (invoice_id, line_no)`,

	`CREATE TABLE IF NOT EXISTS doc_purchase_entries (
		id UUID PRIMARY KEY,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		number TEXT NOT NULL UNIQUE,
		date TIMESTAMPTZ NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		item_id UUID NOT NULL REFERENCES cat_items (id),
		batch_id UUID NOT NULL REFERENCES stock_batches (id),
		batch_number TEXT NOT NULL,
		total_purchased_unit BIGINT NOT NULL,
		total_sub_units BIGINT NOT NULL,
		price_per_unit NUMERIC(18,2) NOT NULL,
		mrp NUMERIC(18,2) NOT NULL,
		selling_price NUMERIC(18,2) NOT NULL,
		tax_type TEXT NOT NULL,
		cgst NUMERIC(8,4) NOT NULL DEFAULT 0,
		sgst NUMERIC(8,4) NOT NULL DEFAULT 0,
		igst NUMERIC(8,4) NOT NULL DEFAULT 0,
		discount_percent NUMERIC(8,4) NOT NULL DEFAULT 0,
		total_price NUMERIC(18,2) NOT NULL,
		taxable_amount NUMERIC(18,2) NOT NULL,
		tax_amount NUMERIC(18,2) NOT NULL,
		grand_total NUMERIC(18,2) NOT NULL,
		manufacturing_date TIMESTAMPTZ,
		expiry_date TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_doc_purchase_entries_item
		ON doc_purchase_entries (item_id)`,

	`CREATE TABLE IF NOT EXISTS stock_adjustments (
		id UUID PRIMARY KEY,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		number TEXT NOT NULL UNIQUE,
		date TIMESTAMPTZ NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		item_id UUID NOT NULL REFERENCES cat_items (id),
		batch_id UUID NOT NULL REFERENCES stock_batches (id),
		batch_number TEXT NOT NULL,
		total_quantity BIGINT NOT NULL CHECK (total_quantity > 0),
		adjust_type TEXT NOT NULL CHECK (adjust_type IN ('add', 'reduce')),
		reason TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_adjustments_batch
		ON stock_adjustments (batch_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS sys_sequences (
		sequence_type TEXT NOT NULL,
		year INTEGER NOT NULL,
		current_val BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (sequence_type, year)
	)`,

	`CREATE TABLE IF NOT EXISTS sys_operation_log (
		id UUID PRIMARY KEY,
		entity_type TEXT NOT NULL,
		entity_id UUID NOT NULL,
		action TEXT NOT NULL,
		snapshot JSONB,
		snapshot_compressed BYTEA,
		compression_algo TEXT NOT NULL DEFAULT 'none',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sys_operation_log_entity
		ON sys_operation_log (entity_type, entity_id, created_at DESC)`,
}

// Migrate applies the schema. Safe to call on every startup.
func Migrate(ctx context.Context, pool *Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	logger.Info(ctx, "database schema up to date", "statements", len(schema))
	return nil
}
