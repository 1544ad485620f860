// Package storage holds what the rule stores share: the JSON document
// layout used by the fs and gcs backends and the update semantics every
// backend follows.
package storage

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rezkam/central/internal/domain"
)

// Document is the stored JSON form of a recurrence rule.
type Document struct {
	ID         string                 `json:"id"`
	TemplateID string                 `json:"templateId"`
	StartDate  domain.Date            `json:"startDate"`
	Config     domain.RecurringConfig `json:"config"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
	Version    int                    `json:"version"`
}

// NewDocument captures a rule as a document.
func NewDocument(rule *domain.RecurringRule) Document {
	return Document{
		ID:         rule.ID,
		TemplateID: rule.TemplateID,
		StartDate:  rule.StartDate,
		Config:     rule.Config,
		CreatedAt:  rule.CreatedAt.UTC(),
		UpdatedAt:  rule.UpdatedAt.UTC(),
		Version:    rule.Version,
	}
}

// Rule converts the document back to a domain rule.
func (d Document) Rule() *domain.RecurringRule {
	return &domain.RecurringRule{
		ID:         d.ID,
		TemplateID: d.TemplateID,
		StartDate:  d.StartDate,
		Config:     d.Config,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
		Version:    d.Version,
	}
}

// Marshal encodes the document.
func (d Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rule %s: %w", d.ID, err)
	}
	return data, nil
}

// UnmarshalDocument decodes a stored document.
func UnmarshalDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("failed to unmarshal rule: %w", err)
	}
	return d, nil
}

// MarshalConfig encodes a configuration for SQL columns.
func MarshalConfig(cfg domain.RecurringConfig) ([]byte, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recurrence config: %w", err)
	}
	return data, nil
}

// UnmarshalConfig decodes a configuration read from a SQL column.
func UnmarshalConfig(data []byte) (domain.RecurringConfig, error) {
	var cfg domain.RecurringConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.RecurringConfig{}, fmt.Errorf("failed to unmarshal recurrence config: %w", err)
	}
	return cfg, nil
}

// ExpectedVersion returns the version an update must match, or -1 when the
// update carries no etag.
func ExpectedVersion(params domain.UpdateRuleParams) (int, error) {
	if params.Etag == nil {
		return -1, nil
	}
	return domain.ParseEtag(*params.Etag)
}

// ApplyUpdate applies params to a copy of current, checking the etag and
// bumping the version. Used by backends without server-side conditions.
func ApplyUpdate(current *domain.RecurringRule, params domain.UpdateRuleParams) (*domain.RecurringRule, error) {
	expected, err := ExpectedVersion(params)
	if err != nil {
		return nil, err
	}
	if expected >= 0 && expected != current.Version {
		return nil, fmt.Errorf("%w: rule %s is at version %d, not %d",
			domain.ErrVersionConflict, current.ID, current.Version, expected)
	}

	updated := *current
	updated.Config = params.Config
	if params.StartDate != nil {
		updated.StartDate = *params.StartDate
	}
	updated.UpdatedAt = params.UpdatedAt.UTC()
	updated.Version = current.Version + 1
	return &updated, nil
}

// SortRules orders rules by creation time, then ID.
func SortRules(rules []*domain.RecurringRule) {
	slices.SortFunc(rules, func(a, b *domain.RecurringRule) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
