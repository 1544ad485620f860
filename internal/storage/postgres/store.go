// Package postgres stores recurrence rules in PostgreSQL through a pgx
// connection pool. Configurations are kept as JSONB.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rezkam/central/internal/application/planner"
	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/storage"
)

// Compile-time verification that Store implements the repository interface.
var _ planner.Repository = (*Store)(nil)

const ruleColumns = `id::text, template_id, start_date, config, created_at, updated_at, version`

// Store provides the PostgreSQL implementation of planner.Repository.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL store with the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping checks a pooled connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// CreateRule inserts a new rule.
func (s *Store) CreateRule(ctx context.Context, rule *domain.RecurringRule) (*domain.RecurringRule, error) {
	id, err := parseID(rule.ID)
	if err != nil {
		return nil, err
	}
	config, err := storage.MarshalConfig(rule.Config)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO recurring_rules (id, template_id, start_date, config, created_at, updated_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING `+ruleColumns,
		id, rule.TemplateID, rule.StartDate.Time(), config, rule.CreatedAt.UTC(), rule.UpdatedAt.UTC(), rule.Version)
	created, err := scanRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRuleExists, rule.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert rule: %w", err)
	}
	return created, nil
}

// FindRule retrieves a rule by ID.
func (s *Store) FindRule(ctx context.Context, id string) (*domain.RecurringRule, error) {
	ruleID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	row := s.pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM recurring_rules WHERE id = $1`, ruleID)
	rule, err := scanRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find rule: %w", err)
	}
	return rule, nil
}

// FindRulesByTemplate lists a template's rules in creation order.
func (s *Store) FindRulesByTemplate(ctx context.Context, templateID string) ([]*domain.RecurringRule, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+ruleColumns+` FROM recurring_rules
		 WHERE template_id = $1
		 ORDER BY created_at, id`, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	rules, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.RecurringRule, error) {
		return scanRule(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	if rules == nil {
		rules = []*domain.RecurringRule{}
	}
	return rules, nil
}

// UpdateRule replaces the configuration with a version-guarded UPDATE.
func (s *Store) UpdateRule(ctx context.Context, params domain.UpdateRuleParams) (*domain.RecurringRule, error) {
	id, err := parseID(params.RuleID)
	if err != nil {
		return nil, err
	}
	expected, err := storage.ExpectedVersion(params)
	if err != nil {
		return nil, err
	}
	config, err := storage.MarshalConfig(params.Config)
	if err != nil {
		return nil, err
	}

	var startDate *time.Time
	if params.StartDate != nil {
		t := params.StartDate.Time()
		startDate = &t
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE recurring_rules
		 SET config = $2, start_date = COALESCE($3, start_date), updated_at = $4, version = version + 1
		 WHERE id = $1 AND ($5::int < 0 OR version = $5)
		 RETURNING `+ruleColumns,
		id, config, startDate, params.UpdatedAt.UTC(), expected)
	rule, err := scanRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.missOrConflict(ctx, id, expected)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}
	return rule, nil
}

// DeleteRule removes a rule.
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	ruleID, err := parseID(id)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM recurring_rules WHERE id = $1`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
	}
	return nil
}

// missOrConflict explains why a guarded UPDATE matched no row.
func (s *Store) missOrConflict(ctx context.Context, id uuid.UUID, expected int) error {
	var version int
	err := s.pool.QueryRow(ctx, `SELECT version FROM recurring_rules WHERE id = $1`, id).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to read rule version: %w", err)
	}
	return fmt.Errorf("%w: rule %s is at version %d, not %d", domain.ErrVersionConflict, id, version, expected)
}

func scanRule(row pgx.Row) (*domain.RecurringRule, error) {
	var (
		rule      domain.RecurringRule
		startDate time.Time
		config    []byte
	)
	if err := row.Scan(&rule.ID, &rule.TemplateID, &startDate, &config, &rule.CreatedAt, &rule.UpdatedAt, &rule.Version); err != nil {
		return nil, err
	}

	rule.StartDate = domain.DateOf(startDate.UTC())
	cfg, err := storage.UnmarshalConfig(config)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
	}
	rule.Config = cfg
	rule.CreatedAt = rule.CreatedAt.UTC()
	rule.UpdatedAt = rule.UpdatedAt.UTC()
	return &rule, nil
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return parsed, nil
}
