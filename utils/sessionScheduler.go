package utils

import (
	"log"
	"time"

	"edusynapse/database"
	"edusynapse/models"

	"github.com/robfig/cron/v3"
)

// staleSessionAge is how long a session may sit idle before being abandoned.
const staleSessionAge = 2 * time.Hour

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[SESSION-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// abandonStaleSessions marks active or paused sessions with no recent
// activity as abandoned so they stop counting toward in-progress state.
func abandonStaleSessions() {
	db := database.Database.Db
	cutoff := time.Now().Add(-staleSessionAge)

	var sessions []models.LearningSession
	if err := db.Where("status IN ? AND last_activity_at < ? AND is_deleted = false",
		[]string{models.SessionActive, models.SessionPaused}, cutoff).
		Find(&sessions).Error; err != nil {
		logScheduler("Error fetching stale sessions: " + err.Error())
		return
	}

	for _, session := range sessions {
		session.Status = models.SessionAbandoned
		session.TotalDurationSeconds = int(session.LastActivityAt.Sub(session.StartedAt).Seconds())
		db.Save(&session)
	}

	if len(sessions) > 0 {
		logScheduler("Abandoned stale sessions")
	}
}

// updateStreaks resets the daily streak of learners inactive for more than
// a day and records the longest streak reached.
func updateStreaks() {
	db := database.Database.Db
	cutoff := time.Now().Add(-48 * time.Hour)

	var profiles []models.LearnerProfile
	if err := db.Where("current_streak_days > 0 AND is_deleted = false").
		Find(&profiles).Error; err != nil {
		logScheduler("Error fetching learner profiles: " + err.Error())
		return
	}

	for _, profile := range profiles {
		if profile.LastActivityAt == nil || profile.LastActivityAt.Before(cutoff) {
			if profile.CurrentStreakDays > profile.LongestStreakDays {
				profile.LongestStreakDays = profile.CurrentStreakDays
			}
			profile.CurrentStreakDays = 0
			db.Save(&profile)
		}
	}

	logScheduler("Daily streak update completed")
}

// StartStaleSessionScheduler runs every 15 minutes
func StartStaleSessionScheduler(c *cron.Cron) {
	c.AddFunc("*/15 * * * *", func() {
		abandonStaleSessions()
	})
	logScheduler("Stale session scheduler started - runs every 15 minutes")
}

// StartStreakScheduler runs daily at midnight UTC
func StartStreakScheduler(c *cron.Cron) {
	c.AddFunc("0 0 * * *", func() {
		updateStreaks()
	})
	logScheduler("Streak scheduler started - runs daily at midnight")
}

// InitializeSessionSchedulers initializes all maintenance schedulers
func InitializeSessionSchedulers() *cron.Cron {
	logScheduler("Initializing session schedulers...")

	c := cron.New()

	StartStaleSessionScheduler(c)
	StartStreakScheduler(c)

	c.Start()

	logScheduler("All session schedulers initialized successfully")
	return c
}
