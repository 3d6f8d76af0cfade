package donations

import (
	"errors"

	"donorly/internal/engine/schedule"
)

// NewDonation is the payload for recording a donation of any kind.
type NewDonation struct {
	DonorID      string           `json:"donor_id"`
	Amount       int64            `json:"amount"`
	Currency     string           `json:"currency"`
	Purpose      string           `json:"purpose"`
	PaymentMode  string           `json:"payment_mode"`
	DonationDate schedule.Date    `json:"donation_date"`
	Recurring    bool             `json:"recurring"`
	Cadence      schedule.Cadence `json:"cadence"`
	AnchorDate   *schedule.Date   `json:"anchor_date"`
	PledgeID     string           `json:"pledge_id"`
}

func ValidateNewDonation(req *NewDonation) error {
	if req.DonorID == "" {
		return errors.New("donor_id is required")
	}
	if req.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if req.DonationDate.IsZero() {
		return errors.New("donation_date is required")
	}
	if req.Recurring && req.PledgeID != "" {
		return errors.New("a donation cannot both open a pledge and link to one")
	}
	if req.Recurring {
		if _, err := schedule.ParseCadence(string(req.Cadence)); err != nil {
			return err
		}
	}
	return nil
}
