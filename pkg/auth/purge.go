package auth

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// StartPurgeJob schedules periodic deletion of expired sessions and
// returns the started scheduler. Stop it on shutdown. schedule is a
// standard cron expression; an empty value runs hourly.
func (m *Manager) StartPurgeJob(schedule string) (*cron.Cron, error) {
	if schedule == "" {
		schedule = "@hourly"
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := m.PurgeExpired(ctx); err != nil && m.logger != nil {
			m.logger.WithError(err).Error("session purge failed")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
