package donors

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"donorly/internal/engine/donations"
	"donorly/internal/pkg/validator"
)

type Service struct {
	repo          *Repository
	donationsRepo *donations.Repository
	now           func() time.Time
}

func NewService(repo *Repository, donationsRepo *donations.Repository) *Service {
	return &Service{
		repo:          repo,
		donationsRepo: donationsRepo,
		now:           time.Now,
	}
}

func validate(d *Donor) error {
	if d.Name == "" {
		return errors.New("name is required")
	}
	if d.Type != TypeIndividual && d.Type != TypeOrganization {
		return errors.New("type must be 'individual' or 'organization'")
	}
	if d.Email != "" {
		if err := validator.ValidateEmail(d.Email); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Create(orgID string, req *Donor) (*Donor, error) {
	if req.Type == "" {
		req.Type = TypeIndividual
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	now := s.now().Unix()
	donor := &Donor{
		ID:        "dnr_" + uuid.NewString(),
		OrgID:     orgID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		TaxID:     req.TaxID,
		Type:      req.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(donor); err != nil {
		return nil, err
	}
	return donor, nil
}

func (s *Service) Get(orgID, id string) (*Donor, error) {
	donor, err := s.repo.GetByID(orgID, id)
	if err != nil {
		return nil, err
	}
	if donor == nil {
		return nil, ErrNotFound
	}
	return donor, nil
}

func (s *Service) List(orgID string, limit, offset int) ([]*Donor, error) {
	return s.repo.List(orgID, limit, offset)
}

func (s *Service) Update(orgID, id string, updates *Donor) (*Donor, error) {
	existing, err := s.repo.GetByID(orgID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	if updates.Name != "" {
		existing.Name = updates.Name
	}
	if updates.Email != "" {
		existing.Email = updates.Email
	}
	if updates.Phone != "" {
		existing.Phone = updates.Phone
	}
	if updates.Address != "" {
		existing.Address = updates.Address
	}
	if updates.TaxID != "" {
		existing.TaxID = updates.TaxID
	}
	if updates.Type != "" {
		existing.Type = updates.Type
	}

	if err := validate(existing); err != nil {
		return nil, err
	}
	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete refuses to orphan donation history: a donor with any recorded
// donations stays.
func (s *Service) Delete(orgID, id string) error {
	existing, err := s.repo.GetByID(orgID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}

	count, err := s.donationsRepo.CountForDonor(orgID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasDonations
	}

	return s.repo.Delete(orgID, id)
}
