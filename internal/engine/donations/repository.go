package donations

import (
	"database/sql"
	"time"

	"donorly/internal/engine/schedule"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

const donationColumns = `
	id, org_id, donor_id, kind, amount, currency, purpose, payment_mode,
	receipt_number, donation_date, receipt_emailed, cadence, anchor_date,
	status, last_paid, next_due, pledge_id, timeliness, created_at, updated_at
`

func (r *Repository) Create(d *Donation) error {
	return create(r.db, d)
}

func (r *Repository) CreateTx(tx *sql.Tx, d *Donation) error {
	return create(tx, d)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func create(e execer, d *Donation) error {
	query := `
		INSERT INTO donations (` + donationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := e.Exec(query,
		d.ID,
		d.OrgID,
		d.DonorID,
		string(d.Kind),
		d.Amount,
		d.Currency,
		d.Purpose,
		d.PaymentMode,
		d.ReceiptNumber,
		d.DonationDate,
		d.ReceiptEmailed,
		nullString(string(d.Cadence)),
		nullDate(d.AnchorDate),
		nullString(string(d.Status)),
		nullDate(d.LastPaid),
		nullDate(d.NextDue),
		nullString(d.PledgeID),
		nullString(string(d.Timeliness)),
		d.CreatedAt,
		d.UpdatedAt,
	)
	return err
}

func (r *Repository) GetByID(orgID, id string) (*Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = ? AND org_id = ?`
	row := r.db.QueryRow(query, id, orgID)
	d, err := scanDonation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func (r *Repository) List(orgID string, limit, offset int) ([]*Donation, error) {
	query := `
		SELECT ` + donationColumns + ` FROM donations
		WHERE org_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.queryMany(query, orgID, limit, offset)
}

func (r *Repository) ListPaymentsForPledge(orgID, pledgeID string) ([]*Donation, error) {
	query := `
		SELECT ` + donationColumns + ` FROM donations
		WHERE org_id = ? AND pledge_id = ?
		ORDER BY donation_date ASC
	`
	return r.queryMany(query, orgID, pledgeID)
}

// ListActivePledgesDueBefore feeds the overdue scanner: active pledges whose
// next_due is strictly before asOf.
func (r *Repository) ListActivePledgesDueBefore(orgID string, asOf schedule.Date) ([]*Donation, error) {
	query := `
		SELECT ` + donationColumns + ` FROM donations
		WHERE org_id = ? AND kind = 'pledge' AND status = ? AND next_due IS NOT NULL AND next_due < ?
		ORDER BY next_due ASC
	`
	return r.queryMany(query, orgID, string(StatusActive), asOf)
}

func (r *Repository) CountPaymentsForPledge(orgID, pledgeID string) (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(1) FROM donations WHERE org_id = ? AND pledge_id = ?`,
		orgID, pledgeID,
	).Scan(&n)
	return n, err
}

func (r *Repository) CountForDonor(orgID, donorID string) (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(1) FROM donations WHERE org_id = ? AND donor_id = ?`,
		orgID, donorID,
	).Scan(&n)
	return n, err
}

// UpdateScheduleTx advances a pledge's schedule inside the payment-recording
// transaction. The updated_at guard rejects a concurrent writer: zero rows
// affected means the row changed underneath us and the caller gets
// ErrConflict instead of a silently lost update.
func (r *Repository) UpdateScheduleTx(tx *sql.Tx, orgID, id string, lastPaid, nextDue *schedule.Date, prevUpdatedAt int64) error {
	res, err := tx.Exec(`
		UPDATE donations SET last_paid = ?, next_due = ?, updated_at = ?
		WHERE id = ? AND org_id = ? AND kind = 'pledge' AND updated_at = ?
	`, nullDate(lastPaid), nullDate(nextDue), time.Now().Unix(), id, orgID, prevUpdatedAt)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// UpdateStatus transitions a pledge's status with the same optimistic guard.
// nextDue carries the pledge's schedule through the transition; cancel passes
// nil to clear it.
func (r *Repository) UpdateStatus(orgID, id string, status Status, nextDue *schedule.Date, prevUpdatedAt int64) error {
	res, err := r.db.Exec(`
		UPDATE donations SET status = ?, next_due = ?, updated_at = ?
		WHERE id = ? AND org_id = ? AND kind = 'pledge' AND updated_at = ?
	`, string(status), nullDate(nextDue), time.Now().Unix(), id, orgID, prevUpdatedAt)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *Repository) MarkReceiptEmailed(orgID, id string) error {
	res, err := r.db.Exec(`
		UPDATE donations SET receipt_emailed = 1, updated_at = ?
		WHERE id = ? AND org_id = ?
	`, time.Now().Unix(), id, orgID)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *Repository) Delete(orgID, id string) error {
	res, err := r.db.Exec(`DELETE FROM donations WHERE id = ? AND org_id = ?`, id, orgID)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (r *Repository) queryMany(query string, args ...interface{}) ([]*Donation, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func scanDonation(s interface {
	Scan(dest ...interface{}) error
}) (*Donation, error) {
	var d Donation
	var cadence, status, pledgeID, timeliness sql.NullString
	var anchorDate, lastPaid, nextDue sql.NullString

	err := s.Scan(
		&d.ID,
		&d.OrgID,
		&d.DonorID,
		(*string)(&d.Kind),
		&d.Amount,
		&d.Currency,
		&d.Purpose,
		&d.PaymentMode,
		&d.ReceiptNumber,
		&d.DonationDate,
		&d.ReceiptEmailed,
		&cadence,
		&anchorDate,
		&status,
		&lastPaid,
		&nextDue,
		&pledgeID,
		&timeliness,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cadence.Valid {
		d.Cadence = schedule.Cadence(cadence.String)
	}
	if status.Valid {
		d.Status = Status(status.String)
	}
	if pledgeID.Valid {
		d.PledgeID = pledgeID.String
	}
	if timeliness.Valid {
		d.Timeliness = Timeliness(timeliness.String)
	}

	for _, pair := range []struct {
		raw  sql.NullString
		dest **schedule.Date
	}{
		{anchorDate, &d.AnchorDate},
		{lastPaid, &d.LastPaid},
		{nextDue, &d.NextDue},
	} {
		if !pair.raw.Valid {
			continue
		}
		parsed, err := schedule.ParseDate(pair.raw.String)
		if err != nil {
			return nil, err
		}
		*pair.dest = &parsed
	}

	return &d, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullDate(d *schedule.Date) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}
