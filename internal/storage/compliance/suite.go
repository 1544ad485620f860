// Package compliance holds the behavioural test suite every rule store
// must pass.
package compliance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/central/internal/application/planner"
	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/ptr"
)

// RunRuleRepositoryComplianceTest runs a standard set of tests against a Repository implementation.
// setup returns a fresh (clean) store and a cleanup function.
func RunRuleRepositoryComplianceTest(t *testing.T, setup func(t *testing.T) (planner.Repository, func())) {
	base := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	newRule := func(templateID string, offset time.Duration) *domain.RecurringRule {
		end := domain.MustDate(2026, 6, 30)
		created := base.Add(offset)
		return &domain.RecurringRule{
			ID:         uuid.Must(uuid.NewV7()).String(),
			TemplateID: templateID,
			StartDate:  domain.MustDate(2025, 6, 10),
			Config: domain.RecurringConfig{
				Frequency:  domain.FrequencyWeekly,
				Interval:   1,
				DaysOfWeek: []time.Weekday{time.Monday, time.Friday},
				EndDate:    &end,
			},
			CreatedAt: created,
			UpdatedAt: created,
			Version:   1,
		}
	}

	t.Run("Ping", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()

		require.NoError(t, store.Ping(context.Background()))
	})

	t.Run("CreateAndFindRule", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		rule := newRule(uuid.NewString(), 0)
		created, err := store.CreateRule(ctx, rule)
		require.NoError(t, err)
		assert.Equal(t, 1, created.Version)

		fetched, err := store.FindRule(ctx, rule.ID)
		require.NoError(t, err)
		assert.Equal(t, rule.ID, fetched.ID)
		assert.Equal(t, rule.TemplateID, fetched.TemplateID)
		assert.Equal(t, rule.StartDate, fetched.StartDate)
		assert.Equal(t, rule.Config, fetched.Config)
		assert.True(t, rule.CreatedAt.Equal(fetched.CreatedAt))
		assert.True(t, rule.UpdatedAt.Equal(fetched.UpdatedAt))
		assert.Equal(t, 1, fetched.Version)
	})

	t.Run("PreservesOptionalFields", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		p := domain.MonthlyPatternDayOfWeek
		wd := time.Tuesday
		rule := newRule(uuid.NewString(), 0)
		rule.Config = domain.RecurringConfig{
			Frequency:           domain.FrequencyQuarterly,
			Interval:            1,
			MonthlyPattern:      &p,
			WeekOfMonth:         ptr.To(domain.LastWeekOfMonth),
			MonthlyDayOfWeek:    &wd,
			EndAfterOccurrences: ptr.To(8),
		}
		_, err := store.CreateRule(ctx, rule)
		require.NoError(t, err)

		fetched, err := store.FindRule(ctx, rule.ID)
		require.NoError(t, err)
		assert.Equal(t, rule.Config, fetched.Config)
		assert.Nil(t, fetched.Config.EndDate)
		assert.Nil(t, fetched.Config.DayOfMonth)
	})

	t.Run("CreateDuplicateRule", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		rule := newRule(uuid.NewString(), 0)
		_, err := store.CreateRule(ctx, rule)
		require.NoError(t, err)

		_, err = store.CreateRule(ctx, rule)
		assert.ErrorIs(t, err, domain.ErrRuleExists)
	})

	t.Run("FindRulesByTemplate", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		templateID := uuid.NewString()
		second := newRule(templateID, time.Minute)
		first := newRule(templateID, 0)
		other := newRule(uuid.NewString(), 0)
		for _, r := range []*domain.RecurringRule{second, first, other} {
			_, err := store.CreateRule(ctx, r)
			require.NoError(t, err)
		}

		rules, err := store.FindRulesByTemplate(ctx, templateID)
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, first.ID, rules[0].ID)
		assert.Equal(t, second.ID, rules[1].ID)

		none, err := store.FindRulesByTemplate(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("UpdateRule", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		rule := newRule(uuid.NewString(), 0)
		_, err := store.CreateRule(ctx, rule)
		require.NoError(t, err)

		start := domain.MustDate(2025, 7, 1)
		cfg := domain.RecurringConfig{Frequency: domain.FrequencyMonthly, Interval: 1, DayOfMonth: ptr.To(15)}
		updatedAt := base.Add(time.Hour)
		updated, err := store.UpdateRule(ctx, domain.UpdateRuleParams{
			RuleID:    rule.ID,
			Etag:      ptr.To(rule.Etag()),
			StartDate: &start,
			Config:    cfg,
			UpdatedAt: updatedAt,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, cfg, updated.Config)
		assert.Equal(t, start, updated.StartDate)
		assert.True(t, updatedAt.Equal(updated.UpdatedAt))

		fetched, err := store.FindRule(ctx, rule.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, fetched.Version)
		assert.Equal(t, cfg, fetched.Config)
		assert.True(t, rule.CreatedAt.Equal(fetched.CreatedAt))
	})

	t.Run("UpdateRuleWithoutEtag", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		rule := newRule(uuid.NewString(), 0)
		_, err := store.CreateRule(ctx, rule)
		require.NoError(t, err)

		cfg := domain.RecurringConfig{Frequency: domain.FrequencyDaily, Interval: 3}
		for want := 2; want <= 3; want++ {
			updated, err := store.UpdateRule(ctx, domain.UpdateRuleParams{RuleID: rule.ID, Config: cfg, UpdatedAt: base})
			require.NoError(t, err)
			assert.Equal(t, want, updated.Version)
			assert.Equal(t, rule.StartDate, updated.StartDate)
		}
	})

	t.Run("UpdateRuleVersionConflict", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		rule := newRule(uuid.NewString(), 0)
		_, err := store.CreateRule(ctx, rule)
		require.NoError(t, err)

		_, err = store.UpdateRule(ctx, domain.UpdateRuleParams{
			RuleID:    rule.ID,
			Etag:      ptr.To(fmt.Sprint(rule.Version + 5)),
			Config:    rule.Config,
			UpdatedAt: base,
		})
		assert.ErrorIs(t, err, domain.ErrVersionConflict)

		fetched, err := store.FindRule(ctx, rule.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, fetched.Version)
	})

	t.Run("UpdateMissingRule", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()

		_, err := store.UpdateRule(context.Background(), domain.UpdateRuleParams{
			RuleID:    uuid.NewString(),
			Config:    domain.RecurringConfig{Frequency: domain.FrequencyDaily, Interval: 1},
			UpdatedAt: base,
		})
		assert.ErrorIs(t, err, domain.ErrRuleNotFound)
	})

	t.Run("DeleteRule", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()
		ctx := context.Background()

		rule := newRule(uuid.NewString(), 0)
		_, err := store.CreateRule(ctx, rule)
		require.NoError(t, err)

		require.NoError(t, store.DeleteRule(ctx, rule.ID))

		_, err = store.FindRule(ctx, rule.ID)
		assert.ErrorIs(t, err, domain.ErrRuleNotFound)

		err = store.DeleteRule(ctx, rule.ID)
		assert.ErrorIs(t, err, domain.ErrRuleNotFound)
	})

	t.Run("FindNonExistentRule", func(t *testing.T) {
		store, teardown := setup(t)
		defer teardown()

		_, err := store.FindRule(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrRuleNotFound)
	})
}
