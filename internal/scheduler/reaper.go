package scheduler

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/coffee-focus/coffeefocus/db"
	"github.com/coffee-focus/coffeefocus/internal/logger"
	"github.com/coffee-focus/coffeefocus/internal/models"
)

const StaleSessionJobName = "stale-session-reaper"

// ReapStaleSessions cancels running focus sessions started before the cutoff
// and returns the owners of the affected sessions.
func ReapStaleSessions(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]string, error) {
	var userIDs []string

	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Model(&models.FocusSession{}).
			Where("status = ? AND started_at < ?", models.FocusStatusRunning, cutoff)

		if err := stale.Distinct("user_id").Pluck("user_id", &userIDs).Error; err != nil {
			return err
		}

		if len(userIDs) == 0 {
			return nil
		}

		return tx.Model(&models.FocusSession{}).
			Where("status = ? AND started_at < ?", models.FocusStatusRunning, cutoff).
			Updates(map[string]interface{}{
				"status":       models.FocusStatusCancelled,
				"completed_at": time.Now().UTC(),
			}).Error
	})

	return userIDs, err
}

// StaleSessionJob builds the reaper job. onReaped receives the ids of users
// whose sessions were cancelled.
func StaleSessionJob(interval, staleAfter time.Duration, onReaped func(userIDs []string)) Job {
	return Job{
		Name:     StaleSessionJobName,
		Interval: interval,
		Run: func(ctx context.Context) error {
			userIDs, err := ReapStaleSessions(ctx, db.DB, time.Now().UTC().Add(-staleAfter))
			if err != nil {
				return err
			}

			if len(userIDs) > 0 {
				logger.L().Infow("Cancelled stale focus sessions", "users", len(userIDs))
				if onReaped != nil {
					onReaped(userIDs)
				}
			}

			return nil
		},
	}
}
