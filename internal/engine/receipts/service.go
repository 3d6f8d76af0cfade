package receipts

import (
	"errors"
	"time"
)

type Service struct {
	repo          *Repository
	defaultPrefix string
	defaultFormat string
	now           func() time.Time
}

func NewService(repo *Repository, defaultPrefix, defaultFormat string) *Service {
	if defaultPrefix == "" {
		defaultPrefix = DefaultPrefix
	}
	if defaultFormat == "" {
		defaultFormat = DefaultFormat
	}
	return &Service{
		repo:          repo,
		defaultPrefix: defaultPrefix,
		defaultFormat: defaultFormat,
		now:           time.Now,
	}
}

// Allocate returns the next formatted receipt number for the organization.
// An organization that somehow lacks a sequence row gets one seeded with the
// defaults and the allocation retried once.
func (s *Service) Allocate(orgID string) (string, error) {
	seq, prefix, format, err := s.repo.Allocate(orgID)
	if errors.Is(err, ErrNotFound) {
		if err := s.repo.Seed(orgID, s.defaultPrefix, s.defaultFormat); err != nil {
			return "", err
		}
		seq, prefix, format, err = s.repo.Allocate(orgID)
	}
	if err != nil {
		return "", err
	}
	return FormatNumber(prefix, format, seq, s.now()), nil
}

func (s *Service) Settings(orgID string) (*Sequence, error) {
	seq, err := s.repo.Get(orgID)
	if err != nil {
		return nil, err
	}
	if seq == nil {
		return nil, ErrNotFound
	}
	return seq, nil
}

func (s *Service) UpdateSettings(orgID, prefix, format string) error {
	if prefix == "" {
		prefix = s.defaultPrefix
	}
	if format == "" {
		format = s.defaultFormat
	}
	return s.repo.UpdateSettings(orgID, prefix, format)
}
