package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email      string `gorm:"unique;not null" json:"email"`
	Username   string `gorm:"unique;not null" json:"username"`
	Password   string `gorm:"not null" json:"-"`
	FullName   string `gorm:"default:''" json:"full_name"`
	AvatarURL  string `gorm:"default:''" json:"avatar_url"`
	Role       string `gorm:"default:'USER'"` // USER, ADMIN
	IsActive   bool   `gorm:"default:true" json:"is_active"`
	IsVerified bool   `gorm:"default:false" json:"is_verified"`
	IsGuest    bool   `gorm:"default:false" json:"is_guest"`

	// Learning preferences stored as a JSON document
	Preferences datatypes.JSON `json:"preferences"`

	// Aggregate statistics
	TotalSessions          int `gorm:"default:0" json:"total_sessions"`
	TotalQuestionsAnswered int `gorm:"default:0" json:"total_questions_answered"`
	TotalStudyTimeMinutes  int `gorm:"default:0" json:"total_study_time_minutes"`

	LastLogin *time.Time `json:"last_login"`
	IsDeleted bool       `gorm:"default:false"`
}

// UserPreferences is the shape stored in User.Preferences.
type UserPreferences struct {
	PreferredModality   string `json:"preferred_modality"`   // text, voice, diagram
	PreferredDifficulty string `json:"preferred_difficulty"` // beginner..expert
	DailyGoalMinutes    int    `json:"daily_goal_minutes"`
	NotificationEnabled bool   `json:"notification_enabled"`
	Theme               string `json:"theme"`
}

// DefaultPreferences returns the preferences assigned at registration.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		PreferredModality:   "text",
		PreferredDifficulty: "medium",
		DailyGoalMinutes:    30,
		NotificationEnabled: true,
		Theme:               "light",
	}
}
