package receipts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewRepository(openTestDB(t)), "REC", DefaultFormat)
	svc.now = func() time.Time {
		return time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestServiceAllocateSeedsOnFirstUse(t *testing.T) {
	svc := newTestService(t)

	// No sequence row exists yet: the service seeds defaults and retries.
	got, err := svc.Allocate("org_1")
	require.NoError(t, err)
	assert.Equal(t, "REC/24/03/001", got)

	got, err = svc.Allocate("org_1")
	require.NoError(t, err)
	assert.Equal(t, "REC/24/03/002", got)
}

func TestServiceAllocateUsesOrgSettings(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.repo.Seed("org_1", "DON", "{prefix}-{YY}-{XXX}"))

	got, err := svc.Allocate("org_1")
	require.NoError(t, err)
	assert.Equal(t, "DON-24-001", got)
}

func TestServiceAllocateNumbersAreDistinct(t *testing.T) {
	svc := newTestService(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		got, err := svc.Allocate("org_1")
		require.NoError(t, err)
		assert.False(t, seen[got], "receipt number %q issued twice", got)
		seen[got] = true
		assert.True(t, strings.HasPrefix(got, "REC/"))
	}
}

func TestServiceSettings(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Settings("org_missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.repo.Seed("org_1", "REC", DefaultFormat))

	seq, err := svc.Settings("org_1")
	require.NoError(t, err)
	assert.Equal(t, "REC", seq.Prefix)
	assert.Equal(t, int64(1), seq.NextSeq)

	// Empty values fall back to the configured defaults.
	require.NoError(t, svc.UpdateSettings("org_1", "", ""))
	seq, err = svc.Settings("org_1")
	require.NoError(t, err)
	assert.Equal(t, "REC", seq.Prefix)
	assert.Equal(t, DefaultFormat, seq.Format)

	require.NoError(t, svc.UpdateSettings("org_1", "DON", "{prefix}/{XXX}"))
	seq, err = svc.Settings("org_1")
	require.NoError(t, err)
	assert.Equal(t, "DON", seq.Prefix)
	assert.Equal(t, "{prefix}/{XXX}", seq.Format)
}
