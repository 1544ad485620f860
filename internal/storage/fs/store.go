// Package fs stores recurrence rules as one JSON file per rule.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rezkam/central/internal/application/planner"
	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/storage"
)

var _ planner.Repository = (*Store)(nil)

// Store is a filesystem-based implementation of planner.Repository.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates a new filesystem store.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// getFilePath maps an ID to its file. IDs are UUIDs, which keeps callers
// from escaping the base directory.
func (s *Store) getFilePath(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}

// CreateRule writes a new rule file.
func (s *Store) CreateRule(_ context.Context, rule *domain.RecurringRule) (*domain.RecurringRule, error) {
	path, err := s.getFilePath(rule.ID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRuleExists, rule.ID)
	}

	doc := storage.NewDocument(rule)
	if err := s.write(path, doc); err != nil {
		return nil, err
	}
	return doc.Rule(), nil
}

// FindRule reads a rule file.
func (s *Store) FindRule(_ context.Context, id string) (*domain.RecurringRule, error) {
	path, err := s.getFilePath(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.read(path, id)
	if err != nil {
		return nil, err
	}
	return doc.Rule(), nil
}

// FindRulesByTemplate scans the directory for the template's rules.
func (s *Store) FindRulesByTemplate(ctx context.Context, templateID string) ([]*domain.RecurringRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	rules := []*domain.RecurringRule{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		doc, err := s.read(filepath.Join(s.baseDir, entry.Name()), id)
		if err != nil {
			return nil, err
		}
		if doc.TemplateID == templateID {
			rules = append(rules, doc.Rule())
		}
	}

	storage.SortRules(rules)
	return rules, nil
}

// UpdateRule rewrites a rule file after checking its version.
func (s *Store) UpdateRule(_ context.Context, params domain.UpdateRuleParams) (*domain.RecurringRule, error) {
	path, err := s.getFilePath(params.RuleID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(path, params.RuleID)
	if err != nil {
		return nil, err
	}

	updated, err := storage.ApplyUpdate(doc.Rule(), params)
	if err != nil {
		return nil, err
	}
	if err := s.write(path, storage.NewDocument(updated)); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteRule removes a rule file.
func (s *Store) DeleteRule(_ context.Context, id string) error {
	path, err := s.getFilePath(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
		}
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Ping checks that the base directory still exists.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", s.baseDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.baseDir)
	}
	return nil
}

// Close is a no-op; the store holds no open files.
func (s *Store) Close() error {
	return nil
}

func (s *Store) read(path, id string) (storage.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.Document{}, fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
		}
		return storage.Document{}, fmt.Errorf("failed to read file: %w", err)
	}
	return storage.UnmarshalDocument(data)
}

// write replaces the file atomically via a temporary file in the same
// directory.
func (s *Store) write(path string, doc storage.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.baseDir, ".rule-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
