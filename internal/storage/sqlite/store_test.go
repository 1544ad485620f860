package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/central/internal/application/planner"
	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/storage/compliance"
)

func TestSQLiteStore_Compliance(t *testing.T) {
	compliance.RunRuleRepositoryComplianceTest(t, func(t *testing.T) (planner.Repository, func()) {
		store, err := NewMemoryStore(context.Background())
		require.NoError(t, err)
		return store, func() {
			assert.NoError(t, store.Close())
		}
	})
}

func TestSQLiteStore_FilePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "central.db")

	store, err := NewStore(ctx, Config{Path: path, AutoMigrate: true})
	require.NoError(t, err)

	created := time.Date(2025, 6, 10, 9, 0, 0, 123456789, time.UTC)
	rule := &domain.RecurringRule{
		ID:         uuid.NewString(),
		TemplateID: uuid.NewString(),
		StartDate:  domain.MustDate(2025, 6, 10),
		Config:     domain.RecurringConfig{Frequency: domain.FrequencyYearly, Interval: 1},
		CreatedAt:  created,
		UpdatedAt:  created,
		Version:    1,
	}
	_, err = store.CreateRule(ctx, rule)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Migrations are idempotent on reopen.
	store, err = NewStore(ctx, Config{Path: path, AutoMigrate: true})
	require.NoError(t, err)
	defer store.Close()

	fetched, err := store.FindRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, rule.Config, fetched.Config)
	assert.True(t, created.Equal(fetched.CreatedAt), "nanoseconds survive the round trip")
}

func TestSQLiteStore_InvalidID(t *testing.T) {
	store, err := NewMemoryStore(context.Background())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.FindRule(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestFormatTimestamp_SortsLikeTime(t *testing.T) {
	a := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	b := a.Add(500 * time.Millisecond)
	c := a.Add(time.Second)
	assert.Less(t, formatTimestamp(a), formatTimestamp(b))
	assert.Less(t, formatTimestamp(b), formatTimestamp(c))

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, formatTimestamp(a), formatTimestamp(a.In(berlin)))
}
