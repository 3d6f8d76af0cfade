package donations

import (
	"errors"

	"donorly/internal/engine/schedule"
)

// Kind is the explicit discriminator for the three roles a donation row can
// play. It replaces the legacy is_recurring/linked_to_recurring flag pair.
type Kind string

const (
	KindPledge  Kind = "pledge"  // recurring commitment with a live schedule
	KindPayment Kind = "payment" // money received against a pledge
	KindOneOff  Kind = "oneoff"  // single donation, no schedule
)

// Status values are public API vocabulary, case-sensitive.
type Status string

const (
	StatusActive    Status = "Active"
	StatusPaused    Status = "Paused"
	StatusCancelled Status = "Cancelled"
)

type Timeliness string

const (
	TimelinessEarly   Timeliness = "Early"
	TimelinessOnTime  Timeliness = "On Time"
	TimelinessLate    Timeliness = "Late"
	TimelinessPending Timeliness = "Pending"
)

var (
	ErrNotFound          = errors.New("donation not found")
	ErrConflict          = errors.New("concurrent modification detected")
	ErrNotAPledge        = errors.New("donation is not a pledge")
	ErrPledgeCancelled   = errors.New("pledge is cancelled")
	ErrPledgeHasPayments = errors.New("pledge has linked payments and is not cancelled")
)

type Donation struct {
	ID             string         `json:"id"`
	OrgID          string         `json:"org_id"`
	DonorID        string         `json:"donor_id"`
	Kind           Kind           `json:"kind"`
	Amount         int64          `json:"amount"` // minor currency units
	Currency       string         `json:"currency"`
	Purpose        string         `json:"purpose,omitempty"`
	PaymentMode    string         `json:"payment_mode,omitempty"`
	ReceiptNumber  string         `json:"receipt_number"`
	DonationDate   schedule.Date  `json:"donation_date"`
	ReceiptEmailed bool           `json:"receipt_emailed"`

	// Pledge-only schedule state.
	Cadence    schedule.Cadence `json:"cadence,omitempty"`
	AnchorDate *schedule.Date   `json:"anchor_date,omitempty"`
	Status     Status           `json:"status,omitempty"`
	LastPaid   *schedule.Date   `json:"last_paid,omitempty"`
	NextDue    *schedule.Date   `json:"next_due,omitempty"`

	// Payment-only linkage.
	PledgeID   string     `json:"pledge_id,omitempty"`
	Timeliness Timeliness `json:"timeliness,omitempty"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// IsPledge reports whether the row is a recurring commitment.
func (d *Donation) IsPledge() bool {
	return d.Kind == KindPledge
}
