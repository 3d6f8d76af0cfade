package repositories

import (
	"database/sql"
	"time"

	"donorly/internal/platform/models"
)

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *OrganizationRepository) CreateTx(tx *sql.Tx, org *models.Organization) error {
	_, err := tx.Exec(`
		INSERT INTO organizations (id, slug, name, contact_email, tax_exempt_id, db_file_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, org.ID, org.Slug, org.Name, org.ContactEmail, org.TaxExemptID, org.DBFilePath, org.CreatedAt, org.UpdatedAt)
	return err
}

func (r *OrganizationRepository) Create(org *models.Organization) error {
	_, err := r.db.Exec(`
		INSERT INTO organizations (id, slug, name, contact_email, tax_exempt_id, db_file_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, org.ID, org.Slug, org.Name, org.ContactEmail, org.TaxExemptID, org.DBFilePath, org.CreatedAt, org.UpdatedAt)
	return err
}

func (r *OrganizationRepository) GetByID(id string) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRow(`
		SELECT id, slug, name, contact_email, tax_exempt_id, db_file_path, created_at, updated_at, deleted_at
		FROM organizations WHERE id = ?
	`, id).Scan(&org.ID, &org.Slug, &org.Name, &org.ContactEmail, &org.TaxExemptID, &org.DBFilePath, &org.CreatedAt, &org.UpdatedAt, &org.DeletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) GetBySlug(slug string) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRow(`
		SELECT id, slug, name, contact_email, tax_exempt_id, db_file_path, created_at, updated_at, deleted_at
		FROM organizations WHERE slug = ?
	`, slug).Scan(&org.ID, &org.Slug, &org.Name, &org.ContactEmail, &org.TaxExemptID, &org.DBFilePath, &org.CreatedAt, &org.UpdatedAt, &org.DeletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) Update(org *models.Organization) error {
	_, err := r.db.Exec(`
		UPDATE organizations SET name = ?, contact_email = ?, tax_exempt_id = ?, updated_at = ?
		WHERE id = ?
	`, org.Name, org.ContactEmail, org.TaxExemptID, time.Now().Unix(), org.ID)
	return err
}

// List returns all live organizations. Used by the overdue scan worker to
// walk every tenant database.
func (r *OrganizationRepository) List() ([]*models.Organization, error) {
	rows, err := r.db.Query(`
		SELECT id, slug, name, contact_email, tax_exempt_id, db_file_path, created_at, updated_at, deleted_at
		FROM organizations WHERE deleted_at IS NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org := &models.Organization{}
		if err := rows.Scan(&org.ID, &org.Slug, &org.Name, &org.ContactEmail, &org.TaxExemptID, &org.DBFilePath, &org.CreatedAt, &org.UpdatedAt, &org.DeletedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateTx(tx *sql.Tx, user *models.User) error {
	_, err := tx.Exec(`
		INSERT INTO users (id, organization_id, email, password_hash, full_name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.OrganizationID, user.Email, user.PasswordHash, user.FullName, user.Role, user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *UserRepository) Create(user *models.User) error {
	_, err := r.db.Exec(`
		INSERT INTO users (id, organization_id, email, password_hash, full_name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.OrganizationID, user.Email, user.PasswordHash, user.FullName, user.Role, user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(`
		SELECT id, organization_id, email, password_hash, full_name, role, last_login_at, created_at, updated_at, deleted_at
		FROM users WHERE id = ?
	`, id).Scan(&user.ID, &user.OrganizationID, &user.Email, &user.PasswordHash, &user.FullName, &user.Role, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt, &user.DeletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(`
		SELECT id, organization_id, email, password_hash, full_name, role, last_login_at, created_at, updated_at, deleted_at
		FROM users WHERE email = ?
	`, email).Scan(&user.ID, &user.OrganizationID, &user.Email, &user.PasswordHash, &user.FullName, &user.Role, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt, &user.DeletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdateLastLogin(userID string, timestamp int64) error {
	_, err := r.db.Exec(`UPDATE users SET last_login_at = ? WHERE id = ?`, timestamp, userID)
	return err
}
