package donations

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"donorly/internal/engine/schedule"
)

// ReceiptAllocator stamps a receipt number for the organization. The receipt
// sequencer lives on the global database, so it is injected rather than
// built from the tenant connection.
type ReceiptAllocator interface {
	Allocate(orgID string) (string, error)
}

type Service struct {
	repo     *Repository
	receipts ReceiptAllocator
	now      func() time.Time
}

func NewService(repo *Repository, receipts ReceiptAllocator) *Service {
	return &Service{
		repo:     repo,
		receipts: receipts,
		now:      time.Now,
	}
}

// Create records a donation. Depending on the payload it opens a pledge,
// links a follow-up payment to an existing pledge, or stores a one-off.
func (s *Service) Create(orgID string, req *NewDonation) (*Donation, error) {
	if err := ValidateNewDonation(req); err != nil {
		return nil, err
	}

	if req.PledgeID != "" {
		return s.RecordRecurringPayment(orgID, req.PledgeID, req)
	}
	if req.Recurring {
		return s.createPledge(orgID, req)
	}
	return s.createOneOff(orgID, req)
}

func (s *Service) createPledge(orgID string, req *NewDonation) (*Donation, error) {
	anchor := req.DonationDate
	if req.AnchorDate != nil {
		anchor = *req.AnchorDate
	}

	nextDue, err := schedule.NextDueDate(anchor, req.Cadence, 1)
	if err != nil {
		return nil, err
	}

	receipt, err := s.receipts.Allocate(orgID)
	if err != nil {
		return nil, fmt.Errorf("allocate receipt number: %w", err)
	}

	now := s.now().Unix()
	pledge := &Donation{
		ID:            "don_" + uuid.NewString(),
		OrgID:         orgID,
		DonorID:       req.DonorID,
		Kind:          KindPledge,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Purpose:       req.Purpose,
		PaymentMode:   req.PaymentMode,
		ReceiptNumber: receipt,
		DonationDate:  req.DonationDate,
		Cadence:       req.Cadence,
		AnchorDate:    &anchor,
		Status:        StatusActive,
		NextDue:       &nextDue,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(pledge); err != nil {
		return nil, err
	}
	return pledge, nil
}

func (s *Service) createOneOff(orgID string, req *NewDonation) (*Donation, error) {
	receipt, err := s.receipts.Allocate(orgID)
	if err != nil {
		return nil, fmt.Errorf("allocate receipt number: %w", err)
	}

	now := s.now().Unix()
	d := &Donation{
		ID:            "don_" + uuid.NewString(),
		OrgID:         orgID,
		DonorID:       req.DonorID,
		Kind:          KindOneOff,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Purpose:       req.Purpose,
		PaymentMode:   req.PaymentMode,
		ReceiptNumber: receipt,
		DonationDate:  req.DonationDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(d); err != nil {
		return nil, err
	}
	return d, nil
}

// RecordRecurringPayment links a payment to its pledge and rolls the
// pledge's schedule forward. The payment insert and the schedule update
// commit together; a payment must never exist without the pledge reflecting
// it.
func (s *Service) RecordRecurringPayment(orgID, pledgeID string, req *NewDonation) (*Donation, error) {
	pledge, err := s.repo.GetByID(orgID, pledgeID)
	if err != nil {
		return nil, err
	}
	if pledge == nil {
		return nil, ErrNotFound
	}
	if !pledge.IsPledge() {
		return nil, ErrNotAPledge
	}
	if pledge.Status == StatusCancelled {
		return nil, ErrPledgeCancelled
	}

	anchor := pledge.DonationDate
	if pledge.AnchorDate != nil {
		anchor = *pledge.AnchorDate
	}

	nextDue, err := schedule.NextDueAfter(anchor, pledge.Cadence, req.DonationDate)
	if err != nil {
		return nil, err
	}

	receipt, err := s.receipts.Allocate(orgID)
	if err != nil {
		return nil, fmt.Errorf("allocate receipt number: %w", err)
	}

	now := s.now().Unix()
	paymentDate := req.DonationDate
	payment := &Donation{
		ID:            "don_" + uuid.NewString(),
		OrgID:         orgID,
		DonorID:       pledge.DonorID,
		Kind:          KindPayment,
		Amount:        req.Amount,
		Currency:      pledge.Currency,
		Purpose:       pledge.Purpose,
		PaymentMode:   pledge.PaymentMode,
		ReceiptNumber: receipt,
		DonationDate:  paymentDate,
		PledgeID:      pledge.ID,
		Timeliness:    ClassifyTimeliness(paymentDate, pledge.NextDue),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.PaymentMode != "" {
		payment.PaymentMode = req.PaymentMode
	}

	tx, err := s.repo.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.repo.CreateTx(tx, payment); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateScheduleTx(tx, orgID, pledge.ID, &paymentDate, &nextDue, pledge.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return payment, nil
}

// ClassifyTimeliness compares a payment date against the pledge's prior
// next_due. More than 7 days either side is Early or Late; with no schedule
// to compare against the payment is Pending.
func ClassifyTimeliness(paymentDate schedule.Date, priorNextDue *schedule.Date) Timeliness {
	if priorNextDue == nil || paymentDate.IsZero() {
		return TimelinessPending
	}
	delta := schedule.DaysBetween(*priorNextDue, paymentDate)
	switch {
	case delta < -7:
		return TimelinessEarly
	case delta > 7:
		return TimelinessLate
	default:
		return TimelinessOnTime
	}
}

// Invoice describes the next expected payment on a pledge.
type Invoice struct {
	PledgeID string           `json:"pledge_id"`
	DonorID  string           `json:"donor_id"`
	Amount   int64            `json:"amount"`
	Currency string           `json:"currency"`
	Cadence  schedule.Cadence `json:"cadence"`
	DueDate  schedule.Date    `json:"due_date"`
}

// NextInvoice answers the "compute next invoice" query for a pledge. A
// cancelled pledge has no schedule, so the query is rejected.
func (s *Service) NextInvoice(orgID, pledgeID string) (*Invoice, error) {
	pledge, err := s.repo.GetByID(orgID, pledgeID)
	if err != nil {
		return nil, err
	}
	if pledge == nil {
		return nil, ErrNotFound
	}
	if !pledge.IsPledge() {
		return nil, ErrNotAPledge
	}
	if pledge.Status == StatusCancelled {
		return nil, ErrPledgeCancelled
	}

	due := pledge.NextDue
	if due == nil {
		anchor := pledge.DonationDate
		if pledge.AnchorDate != nil {
			anchor = *pledge.AnchorDate
		}
		computed, err := schedule.NextDueDate(anchor, pledge.Cadence, 1)
		if err != nil {
			return nil, err
		}
		due = &computed
	}

	return &Invoice{
		PledgeID: pledge.ID,
		DonorID:  pledge.DonorID,
		Amount:   pledge.Amount,
		Currency: pledge.Currency,
		Cadence:  pledge.Cadence,
		DueDate:  *due,
	}, nil
}

func (s *Service) Get(orgID, id string) (*Donation, error) {
	d, err := s.repo.GetByID(orgID, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *Service) List(orgID string, limit, offset int) ([]*Donation, error) {
	return s.repo.List(orgID, limit, offset)
}

func (s *Service) MarkReceiptEmailed(orgID, id string) error {
	err := s.repo.MarkReceiptEmailed(orgID, id)
	if err == ErrConflict {
		return ErrNotFound
	}
	return err
}

// Delete removes a donation row. A pledge with linked payments is protected
// unless it has already been cancelled; payments and one-offs always delete.
func (s *Service) Delete(orgID, id string) error {
	d, err := s.repo.GetByID(orgID, id)
	if err != nil {
		return err
	}
	if d == nil {
		return ErrNotFound
	}

	if d.IsPledge() && d.Status != StatusCancelled {
		count, err := s.repo.CountPaymentsForPledge(orgID, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrPledgeHasPayments
		}
	}

	err = s.repo.Delete(orgID, id)
	if err == ErrConflict {
		return ErrNotFound
	}
	return err
}
