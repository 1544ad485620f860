// Package planner is the application layer for date reasoning: it runs the
// parser, recurrence validator and bucketing against the injected clock and
// stores recurrence rules through a Repository.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/rezkam/central/internal/bucket"
	"github.com/rezkam/central/internal/clock"
	"github.com/rezkam/central/internal/dateparse"
	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/recurring"
)

// Default configuration values.
const (
	DefaultMaxOccurrenceWindowDays = 366
	DefaultMaxOccurrences          = 500
	// DefaultOccurrenceWindowDays is used when a request gives no end date.
	DefaultOccurrenceWindowDays = 90
)

// Config holds configuration for the Service.
type Config struct {
	// Location is the zone in which "today" is evaluated. Nil means UTC.
	Location *time.Location

	MaxOccurrenceWindowDays int
	MaxOccurrences          int

	// Telemetry providers; nil uses the global providers.
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Service provides date reasoning and rule management.
type Service struct {
	repo   Repository
	clock  clock.Clock
	config Config
	tel    *telemetry
}

// NewService creates a new planner service.
// Applies application defaults for zero or invalid config values.
func NewService(repo Repository, clk clock.Clock, config Config) (*Service, error) {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.MaxOccurrenceWindowDays <= 0 {
		config.MaxOccurrenceWindowDays = DefaultMaxOccurrenceWindowDays
	}
	if config.MaxOccurrences <= 0 {
		config.MaxOccurrences = DefaultMaxOccurrences
	}
	if clk == nil {
		clk = clock.System{}
	}

	tel, err := newTelemetry(config.MeterProvider, config.TracerProvider)
	if err != nil {
		return nil, err
	}

	return &Service{
		repo:   repo,
		clock:  clk,
		config: config,
		tel:    tel,
	}, nil
}

// Today returns the current date in the configured location.
func (s *Service) Today() domain.Date {
	return clock.Today(s.clock, s.config.Location)
}

// Ready reports whether the rule store answers. A service built without a
// store is always ready.
func (s *Service) Ready(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("rule store unavailable: %w", err)
	}
	return nil
}

// ParseDate interprets a free-text date expression relative to today.
func (s *Service) ParseDate(ctx context.Context, input string) (domain.ParsedDate, bool) {
	parsed, ok := dateparse.Parse(input, s.Today())
	s.tel.parses.Add(ctx, 1, metric.WithAttributes(attrMatched.Bool(ok)))
	return parsed, ok
}

// Suggestions returns the quick-pick due dates for today.
func (s *Service) Suggestions(_ context.Context, ignoreWeekends bool) []domain.DateSuggestion {
	return dateparse.Suggestions(s.Today(), ignoreWeekends)
}

// ValidateRecurrence validates a raw recurrence configuration.
// Returns a *domain.ValidationError listing every violation on failure.
func (s *Service) ValidateRecurrence(ctx context.Context, raw recurring.Raw) (domain.RecurringConfig, error) {
	cfg, err := recurring.Validate(raw)
	s.tel.validations.Add(ctx, 1, metric.WithAttributes(attrValid.Bool(err == nil)))
	return cfg, err
}

// CreateRule validates raw and stores it as a new rule for the template.
func (s *Service) CreateRule(ctx context.Context, templateID string, startDate domain.Date, raw recurring.Raw) (rule *domain.RecurringRule, err error) {
	templateID = strings.TrimSpace(templateID)
	if templateID == "" {
		return nil, domain.ErrTemplateIDRequired
	}
	if startDate.IsZero() {
		return nil, domain.ErrStartDateRequired
	}

	cfg, err := s.ValidateRecurrence(ctx, raw)
	if err != nil {
		return nil, err
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	now := s.clock.Now().UTC()
	rule = &domain.RecurringRule{
		ID:         idObj.String(),
		TemplateID: templateID,
		StartDate:  startDate,
		Config:     cfg,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}

	ctx, span := s.tel.startSpan(ctx, "CreateRule", attrRuleID.String(rule.ID), attrTemplateID.String(templateID))
	defer func() { endSpan(span, err) }()

	created, err := s.repo.CreateRule(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}

	slog.InfoContext(ctx, "recurrence rule created",
		"rule_id", created.ID,
		"template_id", created.TemplateID,
		"frequency", created.Config.Frequency)
	return created, nil
}

// GetRule retrieves a rule by ID.
func (s *Service) GetRule(ctx context.Context, id string) (rule *domain.RecurringRule, err error) {
	if id == "" {
		return nil, domain.ErrRuleNotFound
	}

	ctx, span := s.tel.startSpan(ctx, "GetRule", attrRuleID.String(id))
	defer func() { endSpan(span, err) }()

	rule, err = s.repo.FindRule(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

// ListRules returns the template's rules in creation order.
func (s *Service) ListRules(ctx context.Context, templateID string) (rules []*domain.RecurringRule, err error) {
	templateID = strings.TrimSpace(templateID)
	if templateID == "" {
		return nil, domain.ErrTemplateIDRequired
	}

	ctx, span := s.tel.startSpan(ctx, "ListRules", attrTemplateID.String(templateID))
	defer func() { endSpan(span, err) }()

	rules, err = s.repo.FindRulesByTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, nil
}

// UpdateRule replaces a rule's configuration, and its start date when
// startDate is set. A non-nil etag must match the stored version.
func (s *Service) UpdateRule(ctx context.Context, id string, etag *string, startDate *domain.Date, raw recurring.Raw) (rule *domain.RecurringRule, err error) {
	cfg, err := s.ValidateRecurrence(ctx, raw)
	if err != nil {
		return nil, err
	}

	params := domain.UpdateRuleParams{
		RuleID:    id,
		Etag:      etag,
		StartDate: startDate,
		Config:    cfg,
		UpdatedAt: s.clock.Now().UTC(),
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	ctx, span := s.tel.startSpan(ctx, "UpdateRule", attrRuleID.String(id))
	defer func() { endSpan(span, err) }()

	rule, err = s.repo.UpdateRule(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}

	slog.InfoContext(ctx, "recurrence rule updated", "rule_id", rule.ID, "version", rule.Version)
	return rule, nil
}

// DeleteRule removes a rule.
func (s *Service) DeleteRule(ctx context.Context, id string) (err error) {
	if id == "" {
		return domain.ErrRuleNotFound
	}

	ctx, span := s.tel.startSpan(ctx, "DeleteRule", attrRuleID.String(id))
	defer func() { endSpan(span, err) }()

	if err := s.repo.DeleteRule(ctx, id); err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	slog.InfoContext(ctx, "recurrence rule deleted", "rule_id", id)
	return nil
}

// Occurrences expands a stored rule between from and until (inclusive).
// A zero from means today; a zero until means DefaultOccurrenceWindowDays
// after from, capped at the configured maximum window.
func (s *Service) Occurrences(ctx context.Context, id string, from, until domain.Date) ([]domain.Occurrence, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, rule.StartDate, rule.Config, from, until)
}

// PreviewOccurrences validates raw and expands it from startDate without
// storing anything.
func (s *Service) PreviewOccurrences(ctx context.Context, startDate domain.Date, raw recurring.Raw, from, until domain.Date) ([]domain.Occurrence, error) {
	if startDate.IsZero() {
		return nil, domain.ErrStartDateRequired
	}
	cfg, err := s.ValidateRecurrence(ctx, raw)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, startDate, cfg, from, until)
}

func (s *Service) expand(ctx context.Context, anchor domain.Date, cfg domain.RecurringConfig, from, until domain.Date) ([]domain.Occurrence, error) {
	if from.IsZero() {
		from = s.Today()
	}
	if until.IsZero() {
		until = from.AddDays(min(DefaultOccurrenceWindowDays, s.config.MaxOccurrenceWindowDays) - 1)
	}
	if until.Before(from) {
		return nil, fmt.Errorf("%w: until %s is before from %s", domain.ErrInvalidRange, until, from)
	}
	if span := from.DaysUntil(until) + 1; span > s.config.MaxOccurrenceWindowDays {
		return nil, fmt.Errorf("%w: window of %d days exceeds the maximum of %d",
			domain.ErrInvalidRange, span, s.config.MaxOccurrenceWindowDays)
	}

	occ, err := recurring.Occurrences(anchor, cfg, recurring.Window{
		From:  from,
		Until: until,
		Limit: s.config.MaxOccurrences,
	})
	if err != nil {
		return nil, err
	}
	s.tel.occurrences.Record(ctx, int64(len(occ)), metric.WithAttributes(attribute.String("frequency", string(cfg.Frequency))))
	return occ, nil
}

// BucketGroup is one bucket of a grouped board.
type BucketGroup struct {
	domain.DateBucket
	Tasks []domain.Task `json:"tasks"`
}

// Grouping is a board grouped by relative due date.
type Grouping struct {
	Today   domain.Date   `json:"today"`
	Buckets []BucketGroup `json:"buckets"`
}

// GroupTasks buckets tasks relative to today. Every due date must be empty
// or a real "YYYY-MM-DD" date; the first malformed one fails the call.
func (s *Service) GroupTasks(ctx context.Context, tasks []domain.Task) (Grouping, error) {
	for i, t := range tasks {
		if err := bucket.ValidateDueDate(t.Due()); err != nil {
			return Grouping{}, fmt.Errorf("tasks[%d]: %w", i, err)
		}
	}

	today := s.Today()
	groups := bucket.Group(tasks, today)

	out := Grouping{Today: today}
	for _, b := range bucket.Buckets(today) {
		items := groups[b.ID]
		if n := len(items); n > 0 {
			s.tel.grouped.Add(ctx, int64(n), metric.WithAttributes(attrBucket.String(string(b.ID))))
		}
		out.Buckets = append(out.Buckets, BucketGroup{DateBucket: b, Tasks: items})
	}
	return out, nil
}
