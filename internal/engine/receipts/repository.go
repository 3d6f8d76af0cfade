package receipts

import (
	"database/sql"
	"time"
)

// Repository manages the receipt_sequences table on the global database.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Allocate claims the current sequence value and advances the counter in one
// statement. The increment and the read happen atomically inside the engine,
// so two concurrent donation-recording requests can never be handed the same
// number and no value is skipped.
func (r *Repository) Allocate(orgID string) (int64, string, string, error) {
	var seq int64
	var prefix, format string
	err := r.db.QueryRow(`
		UPDATE receipt_sequences
		SET next_seq = next_seq + 1, updated_at = ?
		WHERE org_id = ?
		RETURNING next_seq - 1, prefix, format
	`, time.Now().Unix(), orgID).Scan(&seq, &prefix, &format)
	if err == sql.ErrNoRows {
		return 0, "", "", ErrNotFound
	}
	if err != nil {
		return 0, "", "", err
	}
	return seq, prefix, format, nil
}

// Seed creates the organization's sequence row with defaults. A row that
// already exists is left untouched so the counter never resets.
func (r *Repository) Seed(orgID, prefix, format string) error {
	_, err := r.db.Exec(`
		INSERT INTO receipt_sequences (org_id, prefix, format, next_seq, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (org_id) DO NOTHING
	`, orgID, prefix, format, time.Now().Unix())
	return err
}

func (r *Repository) SeedTx(tx *sql.Tx, orgID, prefix, format string) error {
	_, err := tx.Exec(`
		INSERT INTO receipt_sequences (org_id, prefix, format, next_seq, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (org_id) DO NOTHING
	`, orgID, prefix, format, time.Now().Unix())
	return err
}

func (r *Repository) Get(orgID string) (*Sequence, error) {
	seq := &Sequence{}
	err := r.db.QueryRow(`
		SELECT org_id, prefix, format, next_seq, updated_at
		FROM receipt_sequences WHERE org_id = ?
	`, orgID).Scan(&seq.OrgID, &seq.Prefix, &seq.Format, &seq.NextSeq, &seq.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return seq, nil
}

// UpdateSettings changes the prefix and format only. The counter is never
// written here: issued numbers stay unique across settings changes.
func (r *Repository) UpdateSettings(orgID, prefix, format string) error {
	res, err := r.db.Exec(`
		UPDATE receipt_sequences SET prefix = ?, format = ?, updated_at = ?
		WHERE org_id = ?
	`, prefix, format, time.Now().Unix(), orgID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
