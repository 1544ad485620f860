// Package gcs stores recurrence rules as JSON objects in a Google Cloud
// Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/rezkam/central/internal/application/planner"
	"github.com/rezkam/central/internal/domain"
	ruledoc "github.com/rezkam/central/internal/storage"
)

var _ planner.Repository = (*Store)(nil)

// maxConcurrency bounds parallel object reads when listing a template.
const maxConcurrency = 20

// Store is a GCS-based implementation of planner.Repository.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewStore creates a new GCS store.
// It assumes the client is authenticated (e.g. via GOOGLE_APPLICATION_CREDENTIALS).
func NewStore(ctx context.Context, bucketName, prefix string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return NewStoreWithClient(client, bucketName, prefix), nil
}

// NewStoreWithClient creates a store around an existing client.
func NewStoreWithClient(client *storage.Client, bucketName, prefix string) *Store {
	return &Store{client: client, bucket: bucketName, prefix: prefix}
}

func (s *Store) objectName(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidID, err)
	}
	return s.prefix + id + ".json", nil
}

func (s *Store) object(name string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(name)
}

// CreateRule writes a new object, failing if one already exists.
func (s *Store) CreateRule(ctx context.Context, rule *domain.RecurringRule) (*domain.RecurringRule, error) {
	name, err := s.objectName(rule.ID)
	if err != nil {
		return nil, err
	}

	doc := ruledoc.NewDocument(rule)
	obj := s.object(name).If(storage.Conditions{DoesNotExist: true})
	if err := s.write(ctx, obj, doc); err != nil {
		if isPreconditionFailed(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRuleExists, rule.ID)
		}
		return nil, err
	}
	return doc.Rule(), nil
}

// FindRule reads a rule object.
func (s *Store) FindRule(ctx context.Context, id string) (*domain.RecurringRule, error) {
	name, err := s.objectName(id)
	if err != nil {
		return nil, err
	}
	doc, _, err := s.read(ctx, name, id)
	if err != nil {
		return nil, err
	}
	return doc.Rule(), nil
}

// FindRulesByTemplate lists the bucket prefix and loads the objects in
// parallel.
func (s *Store) FindRulesByTemplate(ctx context.Context, templateID string) ([]*domain.RecurringRule, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})

	// First, collect all object names
	var objectNames []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		if strings.HasSuffix(attrs.Name, ".json") {
			objectNames = append(objectNames, attrs.Name)
		}
	}

	// Then, fetch objects in parallel
	var mu sync.Mutex
	rules := []*domain.RecurringRule{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for _, name := range objectNames {
		g.Go(func() error {
			id := strings.TrimSuffix(strings.TrimPrefix(name, s.prefix), ".json")
			doc, _, err := s.read(gctx, name, id)
			if errors.Is(err, domain.ErrRuleNotFound) {
				// Deleted between listing and reading.
				return nil
			}
			if err != nil {
				return err
			}
			if doc.TemplateID != templateID {
				return nil
			}
			mu.Lock()
			rules = append(rules, doc.Rule())
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ruledoc.SortRules(rules)
	return rules, nil
}

// UpdateRule rewrites a rule object. The write is conditional on the
// generation that was read, so concurrent writers cannot lose updates.
func (s *Store) UpdateRule(ctx context.Context, params domain.UpdateRuleParams) (*domain.RecurringRule, error) {
	name, err := s.objectName(params.RuleID)
	if err != nil {
		return nil, err
	}

	doc, generation, err := s.read(ctx, name, params.RuleID)
	if err != nil {
		return nil, err
	}

	updated, err := ruledoc.ApplyUpdate(doc.Rule(), params)
	if err != nil {
		return nil, err
	}

	obj := s.object(name).If(storage.Conditions{GenerationMatch: generation})
	if err := s.write(ctx, obj, ruledoc.NewDocument(updated)); err != nil {
		if isPreconditionFailed(err) {
			return nil, fmt.Errorf("%w: rule %s changed concurrently", domain.ErrVersionConflict, params.RuleID)
		}
		return nil, err
	}
	return updated, nil
}

// DeleteRule removes a rule object.
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	name, err := s.objectName(id)
	if err != nil {
		return err
	}
	if err := s.object(name).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Ping reads the bucket attributes.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.Bucket(s.bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("failed to read bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Close closes the GCS client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) read(ctx context.Context, name, id string) (ruledoc.Document, int64, error) {
	r, err := s.object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ruledoc.Document{}, 0, fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
		}
		return ruledoc.Document{}, 0, fmt.Errorf("failed to read object: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return ruledoc.Document{}, 0, fmt.Errorf("failed to read object: %w", err)
	}
	doc, err := ruledoc.UnmarshalDocument(data)
	if err != nil {
		return ruledoc.Document{}, 0, err
	}
	return doc, r.Attrs.Generation, nil
}

func (s *Store) write(ctx context.Context, obj *storage.ObjectHandle, doc ruledoc.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed
}
