package models

import "time"

type StickyNote struct {
	BaseModel

	UserID      string  `gorm:"not null;index;size:36"`
	ProjectID   *string `gorm:"index;size:36"`
	Text        string  `gorm:"size:400"`
	X           int     `gorm:"not null"`
	Y           int     `gorm:"not null"`
	Completed   bool    `gorm:"not null;default:false"`
	CompletedAt *time.Time

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
