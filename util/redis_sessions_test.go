package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariebrainware/medibook/config"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMockRedis(t *testing.T) redismock.ClientMock {
	t.Helper()
	client, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(client)
	t.Cleanup(func() {
		config.SetRedisClientForTest(nil)
		_ = client.Close()
	})
	return mock
}

func TestCacheSession(t *testing.T) {
	mock := withMockRedis(t)
	exp := time.Hour

	mock.ExpectSet("session:tok-1", "123:2", exp).SetVal("OK")
	mock.ExpectSAdd("user_sessions:123", "tok-1").SetVal(1)
	mock.ExpectExpire("user_sessions:123", exp).SetVal(true)

	require.NoError(t, CacheSession(context.Background(), "tok-1", 123, 2, exp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheSession_SetError(t *testing.T) {
	mock := withMockRedis(t)

	mock.ExpectSet("session:tok-1", "123:2", time.Hour).SetErr(errors.New("redis down"))

	assert.EqualError(t, CacheSession(context.Background(), "tok-1", 123, 2, time.Hour), "redis down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddSessionToUserSet_ExpireError(t *testing.T) {
	mock := withMockRedis(t)

	mock.ExpectSAdd("user_sessions:123", "tok").SetVal(1)
	mock.ExpectExpire("user_sessions:123", time.Minute).SetErr(errors.New("expire failed"))

	assert.EqualError(t, AddSessionToUserSet(context.Background(), 123, "tok", time.Minute), "expire failed")
}

func TestLookupCachedSession(t *testing.T) {
	mock := withMockRedis(t)
	ctx := context.Background()

	mock.ExpectGet("session:good").SetVal("7:1")
	uid, rid, err := LookupCachedSession(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, uint(7), uid)
	assert.Equal(t, uint32(1), rid)

	mock.ExpectGet("session:missing").RedisNil()
	_, _, err = LookupCachedSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotCached)

	for _, bad := range []string{"garbage", "x:1", "0:1", "7:y"} {
		mock.ExpectGet("session:bad").SetVal(bad)
		_, _, err = LookupCachedSession(ctx, "bad")
		assert.ErrorIs(t, err, ErrSessionNotCached, bad)
	}

	mock.ExpectGet("session:err").SetErr(errors.New("timeout"))
	_, _, err = LookupCachedSession(ctx, "err")
	assert.EqualError(t, err, "timeout")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveSession(t *testing.T) {
	mock := withMockRedis(t)

	mock.ExpectDel("session:tok").SetVal(1)
	mock.ExpectEval(removeTokenScript, []string{"user_sessions:5"}, "tok").SetVal(int64(1))

	require.NoError(t, RemoveSession(context.Background(), 5, "tok"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateUserSessions(t *testing.T) {
	mock := withMockRedis(t)

	mock.ExpectSMembers("user_sessions:123").SetVal([]string{"t1", "t2"})
	mock.ExpectDel("session:t1").SetVal(1)
	mock.ExpectDel("session:t2").SetVal(1)
	mock.ExpectDel("user_sessions:123").SetVal(1)

	require.NoError(t, InvalidateUserSessions(context.Background(), 123))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateUserSessions_SMembersError(t *testing.T) {
	mock := withMockRedis(t)

	mock.ExpectSMembers("user_sessions:123").SetErr(errors.New("redis connection error"))

	assert.Error(t, InvalidateUserSessions(context.Background(), 123))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateUserSessions_MissingSet(t *testing.T) {
	mock := withMockRedis(t)

	mock.ExpectSMembers("user_sessions:123").RedisNil()
	mock.ExpectDel("user_sessions:123").SetVal(0)

	assert.NoError(t, InvalidateUserSessions(context.Background(), 123))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionHelpersWithoutRedis(t *testing.T) {
	config.SetRedisClientForTest(nil)
	ctx := context.Background()

	assert.NoError(t, CacheSession(ctx, "tok", 1, 1, time.Hour))
	assert.NoError(t, RemoveSession(ctx, 1, "tok"))
	assert.NoError(t, InvalidateUserSessions(ctx, 1))
	_, _, err := LookupCachedSession(ctx, "tok")
	assert.ErrorIs(t, err, ErrSessionNotCached)
}
