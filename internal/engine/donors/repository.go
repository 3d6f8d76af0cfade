package donors

import (
	"database/sql"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(d *Donor) error {
	query := `
		INSERT INTO donors (id, org_id, name, email, phone, address, tax_id, type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		d.ID, d.OrgID, d.Name, d.Email, d.Phone, d.Address, d.TaxID, d.Type, d.CreatedAt, d.UpdatedAt)
	return err
}

func (r *Repository) GetByID(orgID, id string) (*Donor, error) {
	query := `
		SELECT id, org_id, name, email, phone, address, tax_id, type, created_at, updated_at
		FROM donors WHERE id = ? AND org_id = ?
	`
	d := &Donor{}
	err := r.db.QueryRow(query, id, orgID).Scan(
		&d.ID, &d.OrgID, &d.Name, &d.Email, &d.Phone, &d.Address, &d.TaxID, &d.Type, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Repository) List(orgID string, limit, offset int) ([]*Donor, error) {
	query := `
		SELECT id, org_id, name, email, phone, address, tax_id, type, created_at, updated_at
		FROM donors WHERE org_id = ?
		ORDER BY name ASC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.Query(query, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Donor
	for rows.Next() {
		d := &Donor{}
		if err := rows.Scan(&d.ID, &d.OrgID, &d.Name, &d.Email, &d.Phone, &d.Address, &d.TaxID, &d.Type, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (r *Repository) Update(d *Donor) error {
	_, err := r.db.Exec(`
		UPDATE donors SET name = ?, email = ?, phone = ?, address = ?, tax_id = ?, type = ?, updated_at = ?
		WHERE id = ? AND org_id = ?
	`, d.Name, d.Email, d.Phone, d.Address, d.TaxID, d.Type, time.Now().Unix(), d.ID, d.OrgID)
	return err
}

func (r *Repository) Delete(orgID, id string) error {
	_, err := r.db.Exec(`DELETE FROM donors WHERE id = ? AND org_id = ?`, id, orgID)
	return err
}
