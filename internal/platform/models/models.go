package models

type Organization struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	TaxExemptID  string `json:"tax_exempt_id,omitempty"` // 80G / 501(c)(3) registration number
	DBFilePath   string `json:"db_file_path"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
	DeletedAt    *int64 `json:"deleted_at,omitempty"`
}

type User struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Email          string `json:"email"`
	PasswordHash   string `json:"-"`
	FullName       string `json:"full_name"`
	Role           string `json:"role"`
	LastLoginAt    *int64 `json:"last_login_at,omitempty"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
	DeletedAt      *int64 `json:"deleted_at,omitempty"`

	Organization *Organization `json:"organization,omitempty"`
}
