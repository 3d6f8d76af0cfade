package database

import "database/sql"

// TenantSchema is the per-organization schema, applied when a tenant
// database file is first created at signup. cmd/migrate applies the same DDL
// from migrations/tenant for existing tenants.
const TenantSchema = `
CREATE TABLE IF NOT EXISTS donors (
	id TEXT PRIMARY KEY,
	org_id TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT DEFAULT '',
	phone TEXT DEFAULT '',
	address TEXT DEFAULT '',
	tax_id TEXT DEFAULT '',
	type TEXT NOT NULL DEFAULT 'individual',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS donations (
	id TEXT PRIMARY KEY,
	org_id TEXT NOT NULL,
	donor_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	amount INTEGER NOT NULL,
	currency TEXT NOT NULL DEFAULT 'INR',
	purpose TEXT DEFAULT '',
	payment_mode TEXT DEFAULT '',
	receipt_number TEXT NOT NULL,
	donation_date TEXT NOT NULL,
	receipt_emailed INTEGER NOT NULL DEFAULT 0,
	cadence TEXT,
	anchor_date TEXT,
	status TEXT,
	last_paid TEXT,
	next_due TEXT,
	pledge_id TEXT REFERENCES donations(id),
	timeliness TEXT,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_donations_donor ON donations(org_id, donor_id);
CREATE INDEX IF NOT EXISTS idx_donations_pledge ON donations(org_id, pledge_id);
CREATE INDEX IF NOT EXISTS idx_donations_due ON donations(org_id, kind, status, next_due);
`

func EnsureTenantSchema(db *sql.DB) error {
	_, err := db.Exec(TenantSchema)
	return err
}
