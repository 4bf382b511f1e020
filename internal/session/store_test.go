package session

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kb-chat/internal/common/errors"
	"kb-chat/internal/models"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStores_RoundTrip(t *testing.T) {
	_, client := setupRedis(t)

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(client, time.Hour),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := New()
			s.Append("What is KB_123?", "A release note.")
			s.AddTurn(models.NewTurn(models.RoleUser, "What is KB_123?"))
			s.SelectFiles("notes.pdf")

			require.NoError(t, store.Save(ctx, s))

			loaded, err := store.Load(ctx, s.ID())
			require.NoError(t, err)
			assert.Equal(t, s.History(), loaded.History())
			assert.Equal(t, s.SelectedFiles(), loaded.SelectedFiles())
			require.Len(t, loaded.Transcript(), 1)
			assert.Equal(t, s.Transcript()[0].ID, loaded.Transcript()[0].ID)

			require.NoError(t, store.Delete(ctx, s.ID()))
			_, err = store.Load(ctx, s.ID())
			assert.True(t, errors.HasCode(err, errors.ErrCodeSessionNotFound))
		})
	}
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewRedisStore(client, 2*time.Hour)

	s := New()
	require.NoError(t, store.Save(context.Background(), s))
	assert.Equal(t, 2*time.Hour, mr.TTL(keyPrefix+s.ID()))

	mr.FastForward(3 * time.Hour)
	_, err := store.Load(context.Background(), s.ID())
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionNotFound))
}

func TestRedisStore_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("get error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(keyPrefix + "abc").SetErr(stderrors.New("connection refused"))

		_, err := NewRedisStore(client, time.Hour).Load(ctx, "abc")
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeSessionStoreFailed))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt snapshot", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(keyPrefix + "abc").SetVal("not json")

		_, err := NewRedisStore(client, time.Hour).Load(ctx, "abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode snapshot")
	})

	t.Run("delete error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectDel(keyPrefix + "abc").SetErr(stderrors.New("READONLY"))

		err := NewRedisStore(client, time.Hour).Delete(ctx, "abc")
		assert.True(t, errors.HasCode(err, errors.ErrCodeSessionStoreFailed))
	})
}

func TestLoadOrNew(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	fresh, err := LoadOrNew(ctx, store, "")
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.ID())

	named, err := LoadOrNew(ctx, store, "team-chat")
	require.NoError(t, err)
	assert.Equal(t, "team-chat", named.ID())

	named.Append("q", "a")
	require.NoError(t, store.Save(ctx, named))

	again, err := LoadOrNew(ctx, store, "team-chat")
	require.NoError(t, err)
	assert.Len(t, again.History(), 1)
}

func TestLoadOrNew_StoreError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(keyPrefix + "x").SetErr(stderrors.New("timeout"))

	_, err := LoadOrNew(context.Background(), NewRedisStore(client, time.Hour), "x")
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionStoreFailed))
}
