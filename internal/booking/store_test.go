package booking

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(id string) *Session {
	sess := NewSession(id, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	sess.SelectedDate = "2025-03-10"
	sess.AvailableSlots = []string{"09:00", "09:30"}
	sess.SelectedSlot = "09:00"
	sess.Contact = Contact{GivenName: "Ada", FamilyName: "Lovelace", Phone: "+90555"}
	sess.Status = StatusSlotsReady
	sess.FetchGen = 3
	return sess
}

func runStoreContract(t *testing.T, store SessionStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("create and get round-trips", func(t *testing.T) {
		sess := testSession("s-1")
		require.NoError(t, store.Create(ctx, sess))

		got, err := store.Get(ctx, "s-1")
		require.NoError(t, err)
		assert.Equal(t, sess.SelectedDate, got.SelectedDate)
		assert.Equal(t, sess.AvailableSlots, got.AvailableSlots)
		assert.Equal(t, sess.SelectedSlot, got.SelectedSlot)
		assert.Equal(t, sess.Contact, got.Contact)
		assert.Equal(t, sess.Status, got.Status)
		assert.Equal(t, sess.FetchGen, got.FetchGen)
	})

	t.Run("save overwrites", func(t *testing.T) {
		sess := testSession("s-2")
		require.NoError(t, store.Create(ctx, sess))

		sess.Reset()
		require.NoError(t, store.Save(ctx, sess))

		got, err := store.Get(ctx, "s-2")
		require.NoError(t, err)
		assert.Equal(t, StatusIdle, got.Status)
		assert.Empty(t, got.SelectedDate)
		assert.Empty(t, got.AvailableSlots)
	})

	t.Run("delete", func(t *testing.T) {
		sess := testSession("s-3")
		require.NoError(t, store.Create(ctx, sess))
		require.NoError(t, store.Delete(ctx, "s-3"))

		_, err := store.Get(ctx, "s-3")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("stored session does not alias caller copy", func(t *testing.T) {
		sess := testSession("s-4")
		require.NoError(t, store.Create(ctx, sess))

		sess.AvailableSlots[0] = "mutated"
		got, err := store.Get(ctx, "s-4")
		require.NoError(t, err)
		assert.Equal(t, "09:00", got.AvailableSlots[0])
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreSaveUnknownSession(t *testing.T) {
	store := NewMemoryStore()
	err := store.Save(context.Background(), testSession("never-created"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStore(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Minute)
	runStoreContract(t, store)
}

func TestRedisStoreSessionsExpire(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testSession("s-ttl")))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "s-ttl")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreSaveRefreshesTTL(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	sess := testSession("s-refresh")
	require.NoError(t, store.Create(ctx, sess))
	mr.FastForward(30 * time.Second)
	require.NoError(t, store.Save(ctx, sess))
	mr.FastForward(45 * time.Second)

	_, err := store.Get(ctx, "s-refresh")
	assert.NoError(t, err, "an active session must not expire mid-flow")
}
