package models

import (
	"time"

	"gorm.io/datatypes"
)

type Project struct {
	BaseModel

	UserID  string  `gorm:"not null;index;size:36"`
	TeamID  *string `gorm:"index;size:36"`
	Name    string  `gorm:"not null"`
	Summary string  `gorm:"not null"`
	Chips   datatypes.JSONSlice[string]

	FocusGoalMinutes *int
	Objective        *string
	OwnerName        *string
	Priority         *string
	StartDate        *time.Time
	TargetLaunchDate *time.Time
	SuccessCriteria  *string
	Budget           *string
	Stakeholders     datatypes.JSONSlice[string]

	// Relationships
	User        User          `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Team        *Team         `gorm:"foreignKey:TeamID"`
	Tasks       []ProjectTask `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Notes       []ProjectNote `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	StickyNotes []StickyNote  `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// LoggedSeconds sums the time logged against the loaded tasks.
func (p Project) LoggedSeconds() int {
	total := 0
	for _, task := range p.Tasks {
		total += task.LoggedSeconds
	}
	return total
}
