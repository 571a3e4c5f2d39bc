// Package jobs runs the periodic maintenance work of the service.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/util"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartSessionCleanup schedules PurgeExpiredSessions on spec, a standard cron
// expression or a descriptor such as "@every 1h". The caller stops the
// returned scheduler on shutdown.
func StartSessionCleanup(db *gorm.DB, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := PurgeExpiredSessions(ctx, db, time.Now())
		if err != nil {
			log.Printf("Session cleanup failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("Session cleanup removed %d expired sessions", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session cleanup schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}

// PurgeExpiredSessions hard deletes sessions that expired before now and
// drops their cached copies. It returns the number of deleted rows.
func PurgeExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	db = db.WithContext(ctx)

	var expired []model.Session
	if err := db.Unscoped().Where("expires_at <= ?", now).Find(&expired).Error; err != nil {
		return 0, fmt.Errorf("find expired sessions: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(expired))
	for _, s := range expired {
		ids = append(ids, s.ID)
		if err := util.RemoveSession(ctx, s.UserID, s.SessionToken); err != nil {
			log.Printf("Failed to drop cached session for user %d: %v", s.UserID, err)
		}
	}

	res := db.Unscoped().Where("id IN ?", ids).Delete(&model.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
