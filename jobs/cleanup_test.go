package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ariebrainware/medibook/config"
	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/util"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupJobsDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:jobs_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Session{}))
	return db
}

func seedSession(t *testing.T, db *gorm.DB, userID uint, token string, expires time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&model.Session{UserID: userID, SessionToken: token, ExpiresAt: expires}).Error)
}

func TestPurgeExpiredSessions(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	db := setupJobsDB(t)
	now := time.Now()

	seedSession(t, db, 1, "expired-1", now.Add(-time.Hour))
	seedSession(t, db, 2, "expired-2", now.Add(-time.Minute))
	seedSession(t, db, 1, "live", now.Add(time.Hour))

	n, err := PurgeExpiredSessions(context.Background(), db, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var left []model.Session
	require.NoError(t, db.Unscoped().Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "live", left[0].SessionToken)
}

func TestPurgeExpiredSessionsNothingToDo(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	db := setupJobsDB(t)
	seedSession(t, db, 1, "live", time.Now().Add(time.Hour))

	n, err := PurgeExpiredSessions(context.Background(), db, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPurgeExpiredSessionsDropsCache(t *testing.T) {
	client, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(client)
	t.Cleanup(config.ResetRedisClientForTest)

	db := setupJobsDB(t)
	seedSession(t, db, 7, "expired", time.Now().Add(-time.Hour))

	mock.ExpectDel(util.SessionKey("expired")).SetVal(1)
	mock.Regexp().ExpectEval(`SREM`, []string{"user_sessions:7"}, "expired").SetVal(int64(1))

	n, err := PurgeExpiredSessions(context.Background(), db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartSessionCleanupRejectsBadSpec(t *testing.T) {
	db := setupJobsDB(t)

	_, err := StartSessionCleanup(db, "not a schedule")
	assert.Error(t, err)
}

func TestStartSessionCleanup(t *testing.T) {
	db := setupJobsDB(t)

	c, err := StartSessionCleanup(db, "@every 1h")
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)
}
