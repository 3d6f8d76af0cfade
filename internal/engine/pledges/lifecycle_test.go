package pledges

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorly/internal/engine/donations"
	"donorly/internal/engine/schedule"
	"donorly/internal/platform/database"
)

func newTestService(t *testing.T) (*Service, *donations.Repository) {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "tenant.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureTenantSchema(db))

	repo := donations.NewRepository(db)
	return NewService(repo), repo
}

func seedPledge(t *testing.T, repo *donations.Repository, id string, status donations.Status) *donations.Donation {
	t.Helper()

	anchor, err := schedule.ParseDate("2024-01-15")
	require.NoError(t, err)
	nextDue, err := schedule.NextDueDate(anchor, schedule.Monthly, 1)
	require.NoError(t, err)

	now := time.Now().Unix()
	pledge := &donations.Donation{
		ID:            id,
		OrgID:         "org_1",
		DonorID:       "dnr_1",
		Kind:          donations.KindPledge,
		Amount:        50000,
		Currency:      "INR",
		ReceiptNumber: "REC/24/01/001",
		DonationDate:  anchor,
		Cadence:       schedule.Monthly,
		AnchorDate:    &anchor,
		Status:        status,
		NextDue:       &nextDue,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, repo.Create(pledge))
	return pledge
}

func seedOneOff(t *testing.T, repo *donations.Repository, id string) {
	t.Helper()

	dt, err := schedule.ParseDate("2024-01-15")
	require.NoError(t, err)

	now := time.Now().Unix()
	require.NoError(t, repo.Create(&donations.Donation{
		ID:            id,
		OrgID:         "org_1",
		DonorID:       "dnr_1",
		Kind:          donations.KindOneOff,
		Amount:        100,
		Currency:      "INR",
		ReceiptNumber: "REC/24/01/002",
		DonationDate:  dt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(donations.StatusActive, donations.StatusPaused))
	assert.True(t, CanTransition(donations.StatusActive, donations.StatusCancelled))
	assert.True(t, CanTransition(donations.StatusPaused, donations.StatusActive))
	assert.True(t, CanTransition(donations.StatusPaused, donations.StatusCancelled))

	// Cancelled is terminal.
	assert.False(t, CanTransition(donations.StatusCancelled, donations.StatusActive))
	assert.False(t, CanTransition(donations.StatusCancelled, donations.StatusPaused))

	// Self-transitions are not legal edges.
	assert.False(t, CanTransition(donations.StatusActive, donations.StatusActive))
}

func TestPausePreservesNextDue(t *testing.T) {
	svc, repo := newTestService(t)
	seedPledge(t, repo, "don_1", donations.StatusActive)

	got, err := svc.Pause("org_1", "don_1")
	require.NoError(t, err)
	assert.Equal(t, donations.StatusPaused, got.Status)
	require.NotNil(t, got.NextDue)
	assert.Equal(t, "2024-02-15", got.NextDue.String())

	reloaded, err := repo.GetByID("org_1", "don_1")
	require.NoError(t, err)
	assert.Equal(t, donations.StatusPaused, reloaded.Status)
	require.NotNil(t, reloaded.NextDue)
	assert.Equal(t, "2024-02-15", reloaded.NextDue.String())
}

func TestResumeFromPaused(t *testing.T) {
	svc, repo := newTestService(t)
	seedPledge(t, repo, "don_1", donations.StatusPaused)

	got, err := svc.Resume("org_1", "don_1")
	require.NoError(t, err)
	assert.Equal(t, donations.StatusActive, got.Status)
	require.NotNil(t, got.NextDue)
	assert.Equal(t, "2024-02-15", got.NextDue.String(), "resume keeps the schedule from before the pause")
}

func TestCancelClearsNextDue(t *testing.T) {
	svc, repo := newTestService(t)
	seedPledge(t, repo, "don_1", donations.StatusActive)

	got, err := svc.Cancel("org_1", "don_1")
	require.NoError(t, err)
	assert.Equal(t, donations.StatusCancelled, got.Status)
	assert.Nil(t, got.NextDue)

	reloaded, err := repo.GetByID("org_1", "don_1")
	require.NoError(t, err)
	assert.Nil(t, reloaded.NextDue)
}

func TestCancelledIsTerminal(t *testing.T) {
	svc, repo := newTestService(t)
	seedPledge(t, repo, "don_1", donations.StatusCancelled)

	_, err := svc.Resume("org_1", "don_1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Pause("org_1", "don_1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionRejectsNonPledges(t *testing.T) {
	svc, repo := newTestService(t)
	seedOneOff(t, repo, "don_oneoff")

	_, err := svc.Pause("org_1", "don_oneoff")
	assert.ErrorIs(t, err, donations.ErrNotAPledge)

	_, err = svc.Pause("org_1", "don_missing")
	assert.ErrorIs(t, err, donations.ErrNotFound)
}

func TestBulkTransitionReportsPerID(t *testing.T) {
	svc, repo := newTestService(t)
	seedPledge(t, repo, "don_active", donations.StatusActive)
	seedPledge(t, repo, "don_already", donations.StatusPaused)
	seedPledge(t, repo, "don_cancelled", donations.StatusCancelled)

	result := svc.BulkTransition("org_1", []string{
		"don_active", "don_already", "don_cancelled", "don_missing",
	}, donations.StatusPaused)

	require.Len(t, result.Results, 4)
	assert.False(t, result.AllSucceeded)

	byID := map[string]ItemResult{}
	for _, item := range result.Results {
		byID[item.ID] = item
	}

	assert.Equal(t, OutcomeOK, byID["don_active"].Outcome)
	assert.Equal(t, OutcomeNoop, byID["don_already"].Outcome)
	assert.Equal(t, OutcomeFailed, byID["don_cancelled"].Outcome)
	assert.Equal(t, OutcomeFailed, byID["don_missing"].Outcome)
	assert.NotEmpty(t, byID["don_missing"].Error)

	// The failure of one id never blocks the others.
	reloaded, err := repo.GetByID("org_1", "don_active")
	require.NoError(t, err)
	assert.Equal(t, donations.StatusPaused, reloaded.Status)
}

func TestBulkTransitionAllSucceed(t *testing.T) {
	svc, repo := newTestService(t)
	seedPledge(t, repo, "don_a", donations.StatusActive)
	seedPledge(t, repo, "don_b", donations.StatusActive)

	result := svc.BulkTransition("org_1", []string{"don_a", "don_b"}, donations.StatusCancelled)
	assert.True(t, result.AllSucceeded)
	require.Len(t, result.Results, 2)
	for _, item := range result.Results {
		assert.Equal(t, OutcomeOK, item.Outcome)
	}
}
