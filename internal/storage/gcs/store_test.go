package gcs

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/iterator"

	"github.com/rezkam/central/internal/application/planner"
	"github.com/rezkam/central/internal/config"
	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/storage/compliance"
)

func TestGCSStore_Compliance(t *testing.T) {
	cfg, err := config.LoadTestConfig()
	require.NoError(t, err)
	if cfg.GCSBucket == "" {
		t.Skip("CENTRAL_TEST_GCS_BUCKET not set, skipping GCS tests")
	}

	compliance.RunRuleRepositoryComplianceTest(t, func(t *testing.T) (planner.Repository, func()) {
		// Note: This assumes Application Default Credentials are set up
		// and point to a valid project with access to the bucket.
		ctx := context.Background()

		// A fresh prefix per subtest keeps runs isolated.
		prefix := "central-test/" + uuid.NewString() + "/"
		store, err := NewStore(ctx, cfg.GCSBucket, prefix)
		require.NoError(t, err)

		cleanup := func() {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			it := store.client.Bucket(cfg.GCSBucket).Objects(cleanupCtx, &storage.Query{Prefix: prefix})
			for {
				attrs, err := it.Next()
				if errors.Is(err, iterator.Done) {
					break
				}
				if err != nil {
					t.Logf("Warning: failed to list objects during cleanup: %v", err)
					break
				}
				if err := store.client.Bucket(cfg.GCSBucket).Object(attrs.Name).Delete(cleanupCtx); err != nil {
					t.Logf("Warning: failed to delete object %s: %v", attrs.Name, err)
				}
			}
			if err := store.Close(); err != nil {
				t.Logf("Warning: failed to close client: %v", err)
			}
		}

		return store, cleanup
	})
}

func TestObjectName(t *testing.T) {
	s := &Store{bucket: "b", prefix: "rules/"}

	id := uuid.NewString()
	name, err := s.objectName(id)
	require.NoError(t, err)
	assert.Equal(t, "rules/"+id+".json", name)

	_, err = s.objectName("../escape")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
