package pledges

import (
	"errors"
	"fmt"

	"donorly/internal/engine/donations"
)

var ErrInvalidTransition = errors.New("illegal pledge status transition")

// legalTransitions encodes the pledge state machine. Cancelled is terminal:
// it has no outgoing edges.
var legalTransitions = map[donations.Status][]donations.Status{
	donations.StatusActive:    {donations.StatusPaused, donations.StatusCancelled},
	donations.StatusPaused:    {donations.StatusActive, donations.StatusCancelled},
	donations.StatusCancelled: {},
}

func CanTransition(from, to donations.Status) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Service struct {
	repo *donations.Repository
}

func NewService(repo *donations.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Pause(orgID, id string) (*donations.Donation, error) {
	return s.Transition(orgID, id, donations.StatusPaused)
}

func (s *Service) Resume(orgID, id string) (*donations.Donation, error) {
	return s.Transition(orgID, id, donations.StatusActive)
}

func (s *Service) Cancel(orgID, id string) (*donations.Donation, error) {
	return s.Transition(orgID, id, donations.StatusCancelled)
}

// Transition applies a single status change. Pause and resume carry the
// pledge's next_due through unchanged; cancel clears it so the pledge drops
// out of overdue scanning for good.
func (s *Service) Transition(orgID, id string, target donations.Status) (*donations.Donation, error) {
	pledge, err := s.repo.GetByID(orgID, id)
	if err != nil {
		return nil, err
	}
	if pledge == nil {
		return nil, donations.ErrNotFound
	}
	if !pledge.IsPledge() {
		return nil, donations.ErrNotAPledge
	}
	if !CanTransition(pledge.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, pledge.Status, target)
	}

	nextDue := pledge.NextDue
	if target == donations.StatusCancelled {
		nextDue = nil
	}

	if err := s.repo.UpdateStatus(orgID, id, target, nextDue, pledge.UpdatedAt); err != nil {
		return nil, err
	}

	pledge.Status = target
	pledge.NextDue = nextDue
	return pledge, nil
}

const (
	OutcomeOK     = "ok"
	OutcomeNoop   = "noop"
	OutcomeFailed = "failed"
)

type ItemResult struct {
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

type BulkResult struct {
	AllSucceeded bool         `json:"all_succeeded"`
	Results      []ItemResult `json:"results"`
}

// BulkTransition applies the single-pledge transition to each id
// independently: one failure never rolls back or blocks the others. A pledge
// already in the target state reports a no-op, which counts as success.
func (s *Service) BulkTransition(orgID string, ids []string, target donations.Status) *BulkResult {
	result := &BulkResult{AllSucceeded: true}

	for _, id := range ids {
		item := ItemResult{ID: id}

		pledge, err := s.repo.GetByID(orgID, id)
		switch {
		case err != nil:
			item.Outcome = OutcomeFailed
			item.Error = err.Error()
		case pledge == nil:
			item.Outcome = OutcomeFailed
			item.Error = donations.ErrNotFound.Error()
		case !pledge.IsPledge():
			item.Outcome = OutcomeFailed
			item.Error = donations.ErrNotAPledge.Error()
		case pledge.Status == target:
			item.Outcome = OutcomeNoop
		default:
			if _, err := s.Transition(orgID, id, target); err != nil {
				item.Outcome = OutcomeFailed
				item.Error = err.Error()
			} else {
				item.Outcome = OutcomeOK
			}
		}

		if item.Outcome == OutcomeFailed {
			result.AllSucceeded = false
		}
		result.Results = append(result.Results, item)
	}

	return result
}
