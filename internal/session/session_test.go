package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	commonErrors "github.com/Alturino/medkit/internal/common/errors"
)

type failingStore struct {
	getErr error
	setErr error
}

func (f failingStore) Get(context.Context) (string, error) { return "", f.getErr }

func (f failingStore) SetIfAbsent(context.Context, string) (string, error) {
	return "", f.setErr
}

func (failingStore) Close() error { return nil }

type countingStore struct {
	*MemoryStore
	gets int
}

func (s *countingStore) Get(c context.Context) (string, error) {
	s.gets++
	return s.MemoryStore.Get(c)
}

func newSqliteStore(t *testing.T) *SqliteStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&KeyValue{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewSqliteStore(db, "sessionId")
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "sessionId"), mr
}

func TestProviderGetOrCreate(t *testing.T) {
	c := context.Background()

	t.Run("given empty store should create and persist a new id", func(t *testing.T) {
		store := NewMemoryStore()
		provider := NewProvider(store)
		provider.newID = func() string { return "generated-id" }

		id, err := provider.GetOrCreate(c)
		require.NoError(t, err)
		assert.Equal(t, "generated-id", id)

		stored, err := store.Get(c)
		require.NoError(t, err)
		assert.Equal(t, "generated-id", stored)
	})

	t.Run("given stored id should return it unchanged", func(t *testing.T) {
		store := NewMemoryStore()
		_, _ = store.SetIfAbsent(c, "existing-id")
		provider := NewProvider(store)
		provider.newID = func() string { return "should-not-be-used" }

		id, err := provider.GetOrCreate(c)
		require.NoError(t, err)
		assert.Equal(t, "existing-id", id)
	})

	t.Run("given two calls should return the identical id", func(t *testing.T) {
		store := &countingStore{MemoryStore: NewMemoryStore()}
		provider := NewProvider(store)

		first, err := provider.GetOrCreate(c)
		require.NoError(t, err)
		second, err := provider.GetOrCreate(c)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, store.gets)
	})

	t.Run("given a second provider over the same store should return the same id", func(t *testing.T) {
		store := NewMemoryStore()
		first, err := NewProvider(store).GetOrCreate(c)
		require.NoError(t, err)
		second, err := NewProvider(store).GetOrCreate(c)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("given concurrent callers should hand out one id", func(t *testing.T) {
		provider := NewProvider(NewMemoryStore())
		ids := make([]string, 16)
		var wg sync.WaitGroup
		for i := range ids {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ids[i], _ = provider.GetOrCreate(c)
			}()
		}
		wg.Wait()
		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
	})

	t.Run("given failing read should return error", func(t *testing.T) {
		boom := errors.New("disk unavailable")
		provider := NewProvider(failingStore{getErr: boom})

		id, err := provider.GetOrCreate(c)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, id)
	})

	t.Run("given failing write should return error", func(t *testing.T) {
		boom := errors.New("read only")
		provider := NewProvider(failingStore{getErr: commonErrors.ErrSessionNotFound, setErr: boom})

		id, err := provider.GetOrCreate(c)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, id)
	})
}

func TestStores(t *testing.T) {
	c := context.Background()
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store { return newSqliteStore(t) },
		"redis": func(t *testing.T) Store {
			s, _ := newRedisStore(t)
			return s
		},
	}

	for name, newStore := range stores {
		t.Run(name+" given empty store Get should return ErrSessionNotFound", func(t *testing.T) {
			store := newStore(t)
			_, err := store.Get(c)
			assert.ErrorIs(t, err, commonErrors.ErrSessionNotFound)
		})

		t.Run(name+" given existing id SetIfAbsent should keep the first value", func(t *testing.T) {
			store := newStore(t)
			first, err := store.SetIfAbsent(c, "first")
			require.NoError(t, err)
			second, err := store.SetIfAbsent(c, "second")
			require.NoError(t, err)

			assert.Equal(t, "first", first)
			assert.Equal(t, "first", second)

			got, err := store.Get(c)
			require.NoError(t, err)
			assert.Equal(t, "first", got)
		})
	}
}

func TestRedisStoreKey(t *testing.T) {
	store, mr := newRedisStore(t)
	_, err := store.SetIfAbsent(context.Background(), "abc")
	require.NoError(t, err)

	got, err := mr.Get("medkit:sessionId")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
	assert.Zero(t, mr.TTL("medkit:sessionId"))
}
