package scheduler

import (
	"context"
	"database/sql"
	"time"

	"github.com/goal-tracker-services/common/db"
	"github.com/goal-tracker-services/common/logger"
)

// ResetTokenCleanupScheduler purges password reset tokens that can never
// be redeemed again: expired ones and consumed ones older than a day.
// Tokens are invalidated by their expiry and used flag at read time, so
// this job is housekeeping only.
type ResetTokenCleanupScheduler struct {
	db       *sql.DB
	interval time.Duration
	stopChan chan bool
}

// NewResetTokenCleanupScheduler creates a new scheduler
func NewResetTokenCleanupScheduler(intervalMinutes int) *ResetTokenCleanupScheduler {
	return &ResetTokenCleanupScheduler{
		db:       db.GetDB(),
		interval: time.Duration(intervalMinutes) * time.Minute,
		stopChan: make(chan bool),
	}
}

// Start begins the scheduled cleanup job
func (s *ResetTokenCleanupScheduler) Start() {
	logger.Info("reset token cleanup job started", "interval", s.interval)

	// Run immediately once at startup
	s.purgeStaleTokens()

	// Then run periodically
	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.purgeStaleTokens()
			case <-s.stopChan:
				ticker.Stop()
				logger.Info("reset token cleanup job stopped")
				return
			}
		}
	}()
}

// Stop stops the scheduler
func (s *ResetTokenCleanupScheduler) Stop() {
	s.stopChan <- true
}

func (s *ResetTokenCleanupScheduler) purgeStaleTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	query := `
		DELETE FROM PasswordResetTokens
		WHERE ExpiresAt < UTC_TIMESTAMP()
		   OR (IsUsed = 1 AND CreatedAt < DATE_SUB(UTC_TIMESTAMP(), INTERVAL 24 HOUR))
	`

	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		logger.Error("failed to purge stale reset tokens", "error", err)
		return
	}

	if purged, err := result.RowsAffected(); err == nil && purged > 0 {
		logger.Info("purged stale reset tokens", "count", purged)
	}
}
