package donors

import "errors"

const (
	TypeIndividual   = "individual"
	TypeOrganization = "organization"
)

var (
	ErrNotFound     = errors.New("donor not found")
	ErrHasDonations = errors.New("donor has donation history and cannot be deleted")
)

type Donor struct {
	ID        string `json:"id"`
	OrgID     string `json:"org_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	TaxID     string `json:"tax_id,omitempty"` // PAN or equivalent, printed on receipts
	Type      string `json:"type"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}
