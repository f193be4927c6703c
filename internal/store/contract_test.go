package store_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/serroba/snowlink/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRepository runs the behaviour every shortener.Repository must share.
// Codes and URLs are namespaced so runs against a shared database do not
// collide.
func testRepository(t *testing.T, repo shortener.Repository) {
	t.Helper()

	ctx := context.Background()
	ns := strconv.FormatInt(time.Now().UnixNano(), 36)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	// Finer than TIMESTAMPTZ keeps.
	precise := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)

	mapping := func(code, longURL string, owner *string) *shortener.Mapping {
		return &shortener.Mapping{
			Code:      shortener.Code(ns + code),
			LongURL:   "https://example.com/" + ns + longURL,
			CreatedAt: created,
			OwnerID:   owner,
		}
	}

	t.Run("save and get by code", func(t *testing.T) {
		owner := "owner-" + ns
		m := mapping("a1", "/a", &owner)
		m.Custom = true

		require.NoError(t, repo.Save(ctx, m))

		got, err := repo.GetByCode(ctx, m.Code)
		require.NoError(t, err)
		assert.Equal(t, m.Code, got.Code)
		assert.Equal(t, m.LongURL, got.LongURL)
		assert.True(t, got.Custom)
		assert.True(t, m.CreatedAt.Equal(got.CreatedAt))
		require.NotNil(t, got.OwnerID)
		assert.Equal(t, owner, *got.OwnerID)
	})

	t.Run("exists by code", func(t *testing.T) {
		m := mapping("e1", "/e", nil)
		require.NoError(t, repo.Save(ctx, m))

		ok, err := repo.ExistsByCode(ctx, m.Code)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ExistsByCode(ctx, shortener.Code(ns+"missing"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("save never overwrites", func(t *testing.T) {
		first := mapping("c1", "/old", nil)
		second := mapping("c1", "/new", nil)

		require.NoError(t, repo.Save(ctx, first))
		assert.ErrorIs(t, repo.Save(ctx, second), shortener.ErrCodeTaken)

		got, err := repo.GetByCode(ctx, first.Code)
		require.NoError(t, err)
		assert.Equal(t, first.LongURL, got.LongURL)
	})

	t.Run("find by long url returns the first saved", func(t *testing.T) {
		first := mapping("f1", "/dup", nil)
		second := mapping("f2", "/dup", nil)
		second.CreatedAt = created.Add(time.Second)

		require.NoError(t, repo.Save(ctx, first))
		require.NoError(t, repo.Save(ctx, second))

		got, err := repo.FindByLongURL(ctx, first.LongURL)
		require.NoError(t, err)
		assert.Equal(t, first.Code, got.Code)
	})

	t.Run("saved creation time survives a read back", func(t *testing.T) {
		m := mapping("t1", "/precise", nil)
		m.CreatedAt = precise

		require.NoError(t, repo.Save(ctx, m))

		byURL, err := repo.FindByLongURL(ctx, m.LongURL)
		require.NoError(t, err)
		assert.True(t, m.CreatedAt.Equal(byURL.CreatedAt), "saved %s, read %s", m.CreatedAt, byURL.CreatedAt)

		byCode, err := repo.GetByCode(ctx, m.Code)
		require.NoError(t, err)
		assert.True(t, m.CreatedAt.Equal(byCode.CreatedAt), "saved %s, read %s", m.CreatedAt, byCode.CreatedAt)
	})

	t.Run("missing lookups return ErrNotFound", func(t *testing.T) {
		got, err := repo.GetByCode(ctx, shortener.Code(ns+"nothing"))
		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		got, err = repo.FindByLongURL(ctx, "https://example.com/"+ns+"/nothing")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("counts by owner", func(t *testing.T) {
		alice := "alice-" + ns
		bob := "bob-" + ns

		require.NoError(t, repo.Save(ctx, mapping("o1", "/o1", &alice)))
		require.NoError(t, repo.Save(ctx, mapping("o2", "/o2", &alice)))
		require.NoError(t, repo.Save(ctx, mapping("o3", "/o3", &bob)))
		require.NoError(t, repo.Save(ctx, mapping("o4", "/o4", nil)))

		counts, err := repo.CountByOwner(ctx)
		require.NoError(t, err)

		byOwner := make(map[string]int64, len(counts))
		for _, c := range counts {
			byOwner[c.OwnerID] = c.Count
		}

		assert.Equal(t, int64(2), byOwner[alice])
		assert.Equal(t, int64(1), byOwner[bob])
		assert.NotContains(t, byOwner, "")
	})

	t.Run("concurrent saves of one code admit a single winner", func(t *testing.T) {
		const writers = 16

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)

		for i := 0; i < writers; i++ {
			i := i
			wg.Add(1)

			go func() {
				defer wg.Done()

				m := mapping("race", "/race/"+strconv.Itoa(i), nil)
				if err := repo.Save(ctx, m); err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, wins)
	})
}
