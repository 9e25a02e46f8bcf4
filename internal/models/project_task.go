package models

const (
	TaskStatusBacklog = "backlog"
	TaskStatusActive  = "active"
	TaskStatusBlocked = "blocked"
	TaskStatusDone    = "done"
)

type ProjectTask struct {
	BaseModel

	ProjectID       string `gorm:"not null;index;size:36"`
	Title           string `gorm:"not null;size:160"`
	Status          string `gorm:"not null;default:backlog;size:16"`
	EstimateMinutes *int
	LoggedSeconds   int     `gorm:"not null;default:0"`
	Owner           *string `gorm:"size:120"`

	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
