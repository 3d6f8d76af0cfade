package overdue

import (
	"donorly/internal/engine/donations"
	"donorly/internal/engine/schedule"
)

type Service struct {
	repo *donations.Repository
}

func NewService(repo *donations.Repository) *Service {
	return &Service{repo: repo}
}

// ListOverdue loads the organization's overdue-candidate pledges and runs the
// scan against them.
func (s *Service) ListOverdue(orgID string, asOf schedule.Date) ([]Entry, error) {
	pledges, err := s.repo.ListActivePledgesDueBefore(orgID, asOf)
	if err != nil {
		return nil, err
	}
	return Scan(pledges, asOf), nil
}
