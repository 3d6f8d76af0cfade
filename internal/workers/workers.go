package workers

import (
	"github.com/rs/zerolog/log"

	"donorly/internal/engine/donations"
	"donorly/internal/engine/overdue"
	"donorly/internal/engine/schedule"
	"donorly/internal/platform/database"
	"donorly/internal/platform/repositories"
)

// OverdueScanner walks every tenant database and reports pledges whose
// next_due has elapsed. The scan is read-only; staff act on the report
// through the pledge endpoints.
type OverdueScanner struct {
	orgRepo *repositories.OrganizationRepository
	pool    *database.TenantDBPool
}

func NewOverdueScanner(orgRepo *repositories.OrganizationRepository, pool *database.TenantDBPool) *OverdueScanner {
	return &OverdueScanner{
		orgRepo: orgRepo,
		pool:    pool,
	}
}

// Run scans all live organizations once. A failure in one tenant is logged
// and never stops the walk.
func (s *OverdueScanner) Run() error {
	orgs, err := s.orgRepo.List()
	if err != nil {
		return err
	}

	asOf := schedule.Today()
	for _, org := range orgs {
		db, err := s.pool.Get(org.ID, org.DBFilePath)
		if err != nil {
			log.Error().Err(err).Str("org", org.Slug).Msg("overdue scan: failed to open tenant database")
			continue
		}

		entries, err := overdue.NewService(donations.NewRepository(db)).ListOverdue(org.ID, asOf)
		if err != nil {
			log.Error().Err(err).Str("org", org.Slug).Msg("overdue scan: query failed")
			continue
		}
		if len(entries) == 0 {
			continue
		}

		counts := map[overdue.Severity]int{}
		for _, e := range entries {
			counts[e.Severity]++
		}

		log.Info().
			Str("org", org.Slug).
			Str("as_of", asOf.String()).
			Int("total", len(entries)).
			Int("high", counts[overdue.SeverityHigh]).
			Int("medium", counts[overdue.SeverityMedium]).
			Int("low", counts[overdue.SeverityLow]).
			Msg("overdue pledges found")
	}

	return nil
}
