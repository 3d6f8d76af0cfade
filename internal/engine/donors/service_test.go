package donors

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

	donationsRepo := donations.NewRepository(db)
	return NewService(NewRepository(db), donationsRepo), donationsRepo
}

func TestCreateDonor(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.Create("org_1", &Donor{
		Name:  "Asha Patel",
		Email: "asha@example.com",
		TaxID: "ABCDE1234F",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Contains(t, got.ID, "dnr_")
	assert.Equal(t, "org_1", got.OrgID)
	assert.Equal(t, TypeIndividual, got.Type, "type defaults to individual")

	reloaded, err := svc.Get("org_1", got.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Patel", reloaded.Name)
}

func TestCreateDonorValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create("org_1", &Donor{Email: "a@b.com"})
	assert.Error(t, err, "name is required")

	_, err = svc.Create("org_1", &Donor{Name: "X", Type: "charity"})
	assert.Error(t, err, "unknown type rejected")

	_, err = svc.Create("org_1", &Donor{Name: "X", Email: "not-an-email"})
	assert.Error(t, err, "malformed email rejected")
}

func TestUpdateDonorMergesFields(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create("org_1", &Donor{Name: "Asha Patel", Phone: "9800000000"})
	require.NoError(t, err)

	got, err := svc.Update("org_1", created.ID, &Donor{Email: "asha@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Asha Patel", got.Name, "unset fields keep their value")
	assert.Equal(t, "9800000000", got.Phone)
	assert.Equal(t, "asha@example.com", got.Email)

	_, err = svc.Update("org_1", "dnr_missing", &Donor{Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDonorWithHistoryRefused(t *testing.T) {
	svc, donationsRepo := newTestService(t)

	donor, err := svc.Create("org_1", &Donor{Name: "Asha Patel"})
	require.NoError(t, err)

	dt, err := schedule.ParseDate("2024-01-15")
	require.NoError(t, err)
	now := time.Now().Unix()
	require.NoError(t, donationsRepo.Create(&donations.Donation{
		ID:            "don_1",
		OrgID:         "org_1",
		DonorID:       donor.ID,
		Kind:          donations.KindOneOff,
		Amount:        100,
		Currency:      "INR",
		ReceiptNumber: "REC/24/01/001",
		DonationDate:  dt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))

	assert.ErrorIs(t, svc.Delete("org_1", donor.ID), ErrHasDonations)

	clean, err := svc.Create("org_1", &Donor{Name: "Ravi Kumar"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete("org_1", clean.ID))

	_, err = svc.Get("org_1", clean.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
