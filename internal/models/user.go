package models

type User struct {
	BaseModel

	Name string
	// Email is nil for accounts created through a provider that hides it.
	Email        *string `gorm:"uniqueIndex;size:320"`
	PasswordHash string
	Image        string

	// Relationships
	Accounts        []Account        `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Projects        []Project        `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	TeamMemberships []TeamMembership `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	StickyNotes     []StickyNote     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	FocusSessions   []FocusSession   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (u User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// DisplayName falls back to the email address, then to a generic label.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if email := u.EmailValue(); email != "" {
		return email
	}
	return "You"
}
