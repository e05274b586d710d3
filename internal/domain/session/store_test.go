package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"travelbooking/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ExpiredIsNotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Session{ID: "live", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, &Session{ID: "old", ExpiresAt: time.Now().Add(-time.Second)}))

	_, err := store.Get(ctx, "live")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_Get(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	store := NewRedisStore(db)

	sess := Session{
		ID:           "s-1",
		User:         domain.User{ID: "c-1", Role: domain.RoleCustomer},
		BackendToken: "tok",
		ExpiresAt:    time.Now().Add(time.Hour).UTC(),
	}
	payload, err := json.Marshal(sess)
	require.NoError(t, err)

	rmock.ExpectGet(redisKeyPrefix + "s-1").SetVal(string(payload))
	rmock.ExpectGet(redisKeyPrefix + "missing").SetErr(redis.Nil)

	got, err := store.Get(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.BackendToken)
	assert.Equal(t, domain.RoleCustomer, got.User.Role)

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestRedisStore_Delete(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	store := NewRedisStore(db)

	rmock.ExpectDel(redisKeyPrefix + "s-1").SetVal(1)

	require.NoError(t, store.Delete(context.Background(), "s-1"))
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestRedisStore_SaveRejectsExpired(t *testing.T) {
	db, _ := redismock.NewClientMock()
	store := NewRedisStore(db)

	err := store.Save(context.Background(), &Session{ID: "s-1", ExpiresAt: time.Now().Add(-time.Minute)})
	assert.Error(t, err)
}
