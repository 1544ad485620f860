package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/ptr"
)

func sampleRule() *domain.RecurringRule {
	end := domain.MustDate(2026, 6, 30)
	created := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	return &domain.RecurringRule{
		ID:         "0197a1b2-0000-7000-8000-000000000001",
		TemplateID: "0197a1b2-0000-7000-8000-0000000000aa",
		StartDate:  domain.MustDate(2025, 6, 10),
		Config: domain.RecurringConfig{
			Frequency:  domain.FrequencyWeekly,
			Interval:   2,
			DaysOfWeek: []time.Weekday{time.Monday, time.Thursday},
			EndDate:    &end,
		},
		CreatedAt: created,
		UpdatedAt: created,
		Version:   1,
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	rule := sampleRule()

	data, err := NewDocument(rule).Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"startDate": "2025-06-10"`)
	assert.Contains(t, string(data), `"endDate": "2026-06-30"`)

	doc, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Equal(t, rule, doc.Rule())
}

func TestUnmarshalDocument_Corrupt(t *testing.T) {
	_, err := UnmarshalDocument([]byte(`{"startDate": "not-a-date"}`))
	assert.Error(t, err)
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := sampleRule().Config
	data, err := MarshalConfig(cfg)
	require.NoError(t, err)

	got, err := UnmarshalConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestApplyUpdate(t *testing.T) {
	later := time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC)
	newCfg := domain.RecurringConfig{Frequency: domain.FrequencyDaily, Interval: 1}

	t.Run("without etag", func(t *testing.T) {
		current := sampleRule()
		updated, err := ApplyUpdate(current, domain.UpdateRuleParams{RuleID: current.ID, Config: newCfg, UpdatedAt: later})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, newCfg, updated.Config)
		assert.Equal(t, current.StartDate, updated.StartDate)
		assert.Equal(t, later, updated.UpdatedAt)
		assert.Equal(t, current.CreatedAt, updated.CreatedAt)
		assert.Equal(t, 1, current.Version, "input must not be modified")
	})

	t.Run("matching etag and new start", func(t *testing.T) {
		current := sampleRule()
		start := domain.MustDate(2025, 7, 1)
		updated, err := ApplyUpdate(current, domain.UpdateRuleParams{
			RuleID: current.ID, Etag: ptr.To(`"1"`), StartDate: &start, Config: newCfg, UpdatedAt: later,
		})
		require.NoError(t, err)
		assert.Equal(t, start, updated.StartDate)
	})

	t.Run("stale etag", func(t *testing.T) {
		current := sampleRule()
		_, err := ApplyUpdate(current, domain.UpdateRuleParams{RuleID: current.ID, Etag: ptr.To("0"), Config: newCfg, UpdatedAt: later})
		assert.ErrorIs(t, err, domain.ErrVersionConflict)
	})
}
