package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-units-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest []string
	err := repo.Get(ctx, "lookups:ntes", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "lookups:ntes", []string{"NTE 01"}, time.Minute))
	require.NoError(t, repo.DeleteByPattern(ctx, "lookups:*"))
}

func TestCacheKeysAreNamespaced(t *testing.T) {
	assert.Equal(t, "school-units:lookups:ntes", namespaced("lookups:ntes"))
}
