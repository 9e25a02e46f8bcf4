package models

type Team struct {
	BaseModel

	Name           string `gorm:"not null;size:120"`
	DiscordWebhook string
	SlackWebhook   string

	// Relationships
	Memberships []TeamMembership `gorm:"foreignKey:TeamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Projects    []Project        `gorm:"foreignKey:TeamID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
