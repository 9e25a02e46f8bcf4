package models

type ProjectNote struct {
	BaseModel

	ProjectID string `gorm:"not null;index;size:36"`
	Body      string `gorm:"not null;size:600"`
	Author    string `gorm:"not null;size:120"`

	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
