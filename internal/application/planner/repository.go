package planner

import (
	"context"

	"github.com/rezkam/central/internal/domain"
)

// Repository defines storage operations for recurrence rules.
// All create/update operations return the rule as persisted, including version.
type Repository interface {
	// CreateRule stores a new rule. The rule's ID, timestamps and version
	// are set by the caller; stores persist them as given.
	// Returns domain.ErrRuleExists if a rule with the same ID exists.
	CreateRule(ctx context.Context, rule *domain.RecurringRule) (*domain.RecurringRule, error)

	// FindRule retrieves a rule by its ID.
	// Returns domain.ErrRuleNotFound if the rule doesn't exist.
	FindRule(ctx context.Context, id string) (*domain.RecurringRule, error)

	// FindRulesByTemplate returns every rule attached to a template, ordered
	// by creation time then ID. Returns an empty slice when there are none.
	FindRulesByTemplate(ctx context.Context, templateID string) ([]*domain.RecurringRule, error)

	// UpdateRule replaces a rule's configuration (and start date when set)
	// and increments its version.
	// Returns domain.ErrRuleNotFound if the rule doesn't exist.
	// Returns domain.ErrVersionConflict if etag is provided and doesn't match current version.
	UpdateRule(ctx context.Context, params domain.UpdateRuleParams) (*domain.RecurringRule, error)

	// DeleteRule removes a rule.
	// Returns domain.ErrRuleNotFound if the rule doesn't exist.
	DeleteRule(ctx context.Context, id string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
