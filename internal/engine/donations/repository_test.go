package donations

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorly/internal/engine/schedule"
	"donorly/internal/platform/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "tenant.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.EnsureTenantSchema(db))
	return db
}

func date(t *testing.T, s string) schedule.Date {
	t.Helper()
	d, err := schedule.ParseDate(s)
	require.NoError(t, err)
	return d
}

func testPledge(t *testing.T, orgID, id string, anchor string, cadence schedule.Cadence) *Donation {
	t.Helper()

	anchorDate := date(t, anchor)
	nextDue, err := schedule.NextDueDate(anchorDate, cadence, 1)
	require.NoError(t, err)

	now := time.Now().Unix()
	return &Donation{
		ID:            id,
		OrgID:         orgID,
		DonorID:       "dnr_test",
		Kind:          KindPledge,
		Amount:        50000,
		Currency:      "INR",
		PaymentMode:   "upi",
		ReceiptNumber: "REC/24/01/001",
		DonationDate:  anchorDate,
		Cadence:       cadence,
		AnchorDate:    &anchorDate,
		Status:        StatusActive,
		NextDue:       &nextDue,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestRepositoryCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)

	pledge := testPledge(t, "org_1", "don_1", "2024-01-31", schedule.Quarterly)
	pledge.Purpose = "education fund"
	require.NoError(t, repo.Create(pledge))

	got, err := repo.GetByID("org_1", "don_1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, KindPledge, got.Kind)
	assert.Equal(t, int64(50000), got.Amount)
	assert.Equal(t, "education fund", got.Purpose)
	assert.Equal(t, schedule.Quarterly, got.Cadence)
	assert.Equal(t, StatusActive, got.Status)
	require.NotNil(t, got.AnchorDate)
	assert.Equal(t, "2024-01-31", got.AnchorDate.String())
	require.NotNil(t, got.NextDue)
	assert.Equal(t, "2024-04-30", got.NextDue.String())
	assert.Nil(t, got.LastPaid)
}

func TestRepositoryGetScopedToOrg(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.Create(testPledge(t, "org_1", "don_1", "2024-01-15", schedule.Monthly)))

	got, err := repo.GetByID("org_other", "don_1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepositoryUpdateScheduleGuard(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)

	pledge := testPledge(t, "org_1", "don_1", "2024-01-15", schedule.Monthly)
	require.NoError(t, repo.Create(pledge))

	lastPaid := date(t, "2024-02-10")
	nextDue := date(t, "2024-03-15")

	// A stale updated_at means some other writer got there first.
	tx, err := repo.BeginTx()
	require.NoError(t, err)
	err = repo.UpdateScheduleTx(tx, "org_1", "don_1", &lastPaid, &nextDue, pledge.UpdatedAt-100)
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, tx.Rollback())

	tx, err = repo.BeginTx()
	require.NoError(t, err)
	require.NoError(t, repo.UpdateScheduleTx(tx, "org_1", "don_1", &lastPaid, &nextDue, pledge.UpdatedAt))
	require.NoError(t, tx.Commit())

	got, err := repo.GetByID("org_1", "don_1")
	require.NoError(t, err)
	require.NotNil(t, got.LastPaid)
	assert.Equal(t, "2024-02-10", got.LastPaid.String())
	require.NotNil(t, got.NextDue)
	assert.Equal(t, "2024-03-15", got.NextDue.String())
}

func TestRepositoryUpdateStatusClearsNextDue(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)

	pledge := testPledge(t, "org_1", "don_1", "2024-01-15", schedule.Monthly)
	require.NoError(t, repo.Create(pledge))

	require.NoError(t, repo.UpdateStatus("org_1", "don_1", StatusCancelled, nil, pledge.UpdatedAt))

	got, err := repo.GetByID("org_1", "don_1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Nil(t, got.NextDue)
}

func TestRepositoryListActivePledgesDueBefore(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)

	overdue := testPledge(t, "org_1", "don_overdue", "2024-01-15", schedule.Monthly) // due 2024-02-15
	require.NoError(t, repo.Create(overdue))

	notYet := testPledge(t, "org_1", "don_future", "2024-05-15", schedule.Monthly) // due 2024-06-15
	require.NoError(t, repo.Create(notYet))

	paused := testPledge(t, "org_1", "don_paused", "2024-01-01", schedule.Monthly)
	paused.Status = StatusPaused
	require.NoError(t, repo.Create(paused))

	otherOrg := testPledge(t, "org_2", "don_other", "2024-01-15", schedule.Monthly)
	require.NoError(t, repo.Create(otherOrg))

	got, err := repo.ListActivePledgesDueBefore("org_1", date(t, "2024-03-01"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "don_overdue", got[0].ID)
}

func TestRepositoryCountPaymentsForPledge(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)

	pledge := testPledge(t, "org_1", "don_1", "2024-01-15", schedule.Monthly)
	require.NoError(t, repo.Create(pledge))

	payment := &Donation{
		ID:            "don_pay_1",
		OrgID:         "org_1",
		DonorID:       "dnr_test",
		Kind:          KindPayment,
		Amount:        50000,
		Currency:      "INR",
		ReceiptNumber: "REC/24/02/002",
		DonationDate:  date(t, "2024-02-10"),
		PledgeID:      "don_1",
		Timeliness:    TimelinessOnTime,
		CreatedAt:     time.Now().Unix(),
		UpdatedAt:     time.Now().Unix(),
	}
	require.NoError(t, repo.Create(payment))

	n, err := repo.CountPaymentsForPledge("org_1", "don_1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.CountPaymentsForPledge("org_1", "don_none")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRepositoryMarkReceiptEmailed(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)

	pledge := testPledge(t, "org_1", "don_1", "2024-01-15", schedule.Monthly)
	require.NoError(t, repo.Create(pledge))

	require.NoError(t, repo.MarkReceiptEmailed("org_1", "don_1"))

	got, err := repo.GetByID("org_1", "don_1")
	require.NoError(t, err)
	assert.True(t, got.ReceiptEmailed)

	assert.ErrorIs(t, repo.MarkReceiptEmailed("org_1", "don_missing"), ErrConflict)
}

func TestRepositoryDeleteMissingRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)

	assert.ErrorIs(t, repo.Delete("org_1", "don_missing"), ErrConflict)
}
