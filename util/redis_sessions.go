package util

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ariebrainware/medibook/config"
	"github.com/redis/go-redis/v9"
)

// Session cache layout:
//
//	session:<token>        -> "<userID>:<roleID>", expires with the session
//	user_sessions:<userID> -> set of live tokens, expires with the newest session
func SessionKey(token string) string {
	return "session:" + token
}

func userSessionsKey(userID uint) string {
	return fmt.Sprintf("user_sessions:%d", userID)
}

// removeTokenScript removes one token and drops the set once it is empty.
const removeTokenScript = `
local removed = redis.call('SREM', KEYS[1], ARGV[1])
if removed > 0 and redis.call('SCARD', KEYS[1]) == 0 then
	redis.call('DEL', KEYS[1])
end
return removed
`

// CacheSession stores the session owner and role under its token and tracks
// the token in the per-user set. It is a no-op without Redis.
func CacheSession(ctx context.Context, token string, userID uint, roleID uint32, exp time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.Set(ctx, SessionKey(token), fmt.Sprintf("%d:%d", userID, roleID), exp).Err(); err != nil {
		return err
	}
	return AddSessionToUserSet(ctx, userID, token, exp)
}

// AddSessionToUserSet adds the session token to the per-user Redis set and
// extends the set's TTL to exp.
func AddSessionToUserSet(ctx context.Context, userID uint, token string, exp time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	key := userSessionsKey(userID)
	if err := rdb.SAdd(ctx, key, token).Err(); err != nil {
		return err
	}
	return rdb.Expire(ctx, key, exp).Err()
}

// ErrSessionNotCached is returned by LookupCachedSession on a cache miss or a
// value that does not parse; callers fall back to the database.
var ErrSessionNotCached = errors.New("session not cached")

// LookupCachedSession returns the user and role cached for token.
func LookupCachedSession(ctx context.Context, token string) (uint, uint32, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return 0, 0, ErrSessionNotCached
	}
	val, err := rdb.Get(ctx, SessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, 0, ErrSessionNotCached
	}
	if err != nil {
		return 0, 0, err
	}

	uidStr, ridStr, found := strings.Cut(val, ":")
	if !found {
		return 0, 0, ErrSessionNotCached
	}
	uid, err := strconv.ParseUint(uidStr, 10, 64)
	if err != nil || uid == 0 {
		return 0, 0, ErrSessionNotCached
	}
	rid, err := strconv.ParseUint(ridStr, 10, 32)
	if err != nil {
		return 0, 0, ErrSessionNotCached
	}
	return uint(uid), uint32(rid), nil
}

// RemoveSession deletes the cached session and drops the token from the
// per-user set.
func RemoveSession(ctx context.Context, userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.Del(ctx, SessionKey(token)).Err(); err != nil {
		return err
	}
	return rdb.Eval(ctx, removeTokenScript, []string{userSessionsKey(userID)}, token).Err()
}

// InvalidateUserSessions deletes all session:<token> keys for the given user and
// removes the per-user set.
func InvalidateUserSessions(ctx context.Context, userID uint) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	key := userSessionsKey(userID)
	members, err := rdb.SMembers(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	for _, tok := range members {
		_ = rdb.Del(ctx, SessionKey(tok)).Err()
	}
	return rdb.Del(ctx, key).Err()
}
