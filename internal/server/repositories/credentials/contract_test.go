package credentials

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRepositoryContract exercises behaviour every backend must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("insert then find", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		created := time.Date(2025, 10, 27, 14, 5, 16, 123456000, time.UTC)

		got, err := repo.InsertIfAbsent(ctx, "persist@example.com", "hash-1", created)
		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "persist@example.com", got.Identity)
		assert.Equal(t, "hash-1", got.PasswordHash)

		found, err := repo.FindByIdentity(ctx, "persist@example.com")
		require.NoError(t, err)
		assert.Equal(t, got.ID, found.ID)
		assert.Equal(t, "hash-1", found.PasswordHash)
		assert.True(t, created.Equal(found.CreatedAt), "created_at: want %s got %s", created, found.CreatedAt)
	})

	t.Run("find missing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.FindByIdentity(context.Background(), "ghost@example.com")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("duplicate keeps first record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.InsertIfAbsent(ctx, "test@example.com", "first", time.Now())
		require.NoError(t, err)

		_, err = repo.InsertIfAbsent(ctx, "test@example.com", "second", time.Now())
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)

		found, err := repo.FindByIdentity(ctx, "test@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
		assert.Equal(t, "first", found.PasswordHash)
	})

	t.Run("identity is case sensitive", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.InsertIfAbsent(ctx, "Case@Example.com", "h1", time.Now())
		require.NoError(t, err)
		_, err = repo.InsertIfAbsent(ctx, "case@example.com", "h2", time.Now())
		require.NoError(t, err)

		_, err = repo.FindByIdentity(ctx, "CASE@EXAMPLE.COM")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("empty identity is an ordinary key", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.InsertIfAbsent(ctx, "", "h", time.Now())
		require.NoError(t, err)
		_, err = repo.InsertIfAbsent(ctx, "", "h", time.Now())
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)
	})

	t.Run("concurrent inserts for one identity", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const workers = 32
		var (
			wg       sync.WaitGroup
			won      atomic.Int32
			lost     atomic.Int32
			start    = make(chan struct{})
			failures = make(chan error, workers)
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, err := repo.InsertIfAbsent(ctx, "race@example.com", fmt.Sprintf("hash-%d", i), time.Now())
				switch {
				case err == nil:
					won.Add(1)
				case errors.Is(err, common.ErrorAlreadyExists):
					lost.Add(1)
				default:
					failures <- err
				}
			}(i)
		}
		close(start)
		wg.Wait()
		close(failures)

		for err := range failures {
			t.Errorf("unexpected error: %v", err)
		}
		assert.EqualValues(t, 1, won.Load())
		assert.EqualValues(t, workers-1, lost.Load())
	})

	t.Run("concurrent inserts for distinct identities", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const workers = 16
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := repo.InsertIfAbsent(ctx, fmt.Sprintf("user%d@test.com", i), "h", time.Now())
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}
		for i := 0; i < workers; i++ {
			_, err := repo.FindByIdentity(ctx, fmt.Sprintf("user%d@test.com", i))
			assert.NoError(t, err)
		}
	})
}
