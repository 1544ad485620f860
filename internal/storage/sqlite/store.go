package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rezkam/central/internal/application/planner"
	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/storage"
)

var _ planner.Repository = (*Store)(nil)

// timestampLayout is fixed-width so text order matches time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

const ruleColumns = `id, template_id, start_date, config, created_at, updated_at, version`

// Store implements planner.Repository using SQLite.
type Store struct {
	db *sql.DB
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRule inserts a new rule.
func (s *Store) CreateRule(ctx context.Context, rule *domain.RecurringRule) (*domain.RecurringRule, error) {
	if err := validateID(rule.ID); err != nil {
		return nil, err
	}
	config, err := storage.MarshalConfig(rule.Config)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO recurring_rules (`+ruleColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		rule.ID, rule.TemplateID, rule.StartDate.String(), string(config),
		formatTimestamp(rule.CreatedAt), formatTimestamp(rule.UpdatedAt), rule.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to insert rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to insert rule: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrRuleExists, rule.ID)
	}

	return s.FindRule(ctx, rule.ID)
}

// FindRule retrieves a rule by ID.
func (s *Store) FindRule(ctx context.Context, id string) (*domain.RecurringRule, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM recurring_rules WHERE id = ?`, id)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
	}
	return rule, err
}

// FindRulesByTemplate lists a template's rules in creation order.
func (s *Store) FindRulesByTemplate(ctx context.Context, templateID string) ([]*domain.RecurringRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ruleColumns+` FROM recurring_rules
		 WHERE template_id = ?
		 ORDER BY created_at, id`, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	rules := []*domain.RecurringRule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return rules, nil
}

// UpdateRule replaces the configuration with a version-guarded UPDATE.
func (s *Store) UpdateRule(ctx context.Context, params domain.UpdateRuleParams) (*domain.RecurringRule, error) {
	if err := validateID(params.RuleID); err != nil {
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

	var startDate any
	if params.StartDate != nil {
		startDate = params.StartDate.String()
	}

	row := s.db.QueryRowContext(ctx,
		`UPDATE recurring_rules
		 SET config = ?, start_date = COALESCE(?, start_date), updated_at = ?, version = version + 1
		 WHERE id = ? AND (? < 0 OR version = ?)
		 RETURNING `+ruleColumns,
		string(config), startDate, formatTimestamp(params.UpdatedAt), params.RuleID, expected, expected)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, s.missOrConflict(ctx, params.RuleID, expected)
	}
	return rule, err
}

// DeleteRule removes a rule.
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
	}
	return nil
}

// missOrConflict explains why a guarded UPDATE matched no row.
func (s *Store) missOrConflict(ctx context.Context, id string, expected int) error {
	var version int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM recurring_rules WHERE id = ?`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to read rule version: %w", err)
	}
	return fmt.Errorf("%w: rule %s is at version %d, not %d", domain.ErrVersionConflict, id, version, expected)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*domain.RecurringRule, error) {
	var (
		rule                 domain.RecurringRule
		startDate, config    string
		createdAt, updatedAt string
	)
	err := row.Scan(&rule.ID, &rule.TemplateID, &startDate, &config, &createdAt, &updatedAt, &rule.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}

	if rule.StartDate, err = domain.ParseDate(startDate); err != nil {
		return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
	}
	if rule.Config, err = storage.UnmarshalConfig([]byte(config)); err != nil {
		return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
	}
	if rule.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return nil, fmt.Errorf("rule %s: created_at: %w", rule.ID, err)
	}
	if rule.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("rule %s: updated_at: %w", rule.ID, err)
	}
	return &rule, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return nil
}
