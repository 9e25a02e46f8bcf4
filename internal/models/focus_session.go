package models

import "time"

const (
	FocusStatusRunning   = "running"
	FocusStatusCompleted = "completed"
	FocusStatusCancelled = "cancelled"
)

type FocusSession struct {
	BaseModel

	UserID          string    `gorm:"not null;index;size:36"`
	ProjectID       *string   `gorm:"index;size:36"`
	ProjectTaskID   *string   `gorm:"index;size:36"`
	DurationSeconds int       `gorm:"not null;default:0"`
	Status          string    `gorm:"not null;default:completed;size:16"`
	Note            *string   `gorm:"size:600"`
	StartedAt       time.Time `gorm:"not null;index"`
	CompletedAt     *time.Time

	User        User         `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Project     *Project     `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	ProjectTask *ProjectTask `gorm:"foreignKey:ProjectTaskID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
