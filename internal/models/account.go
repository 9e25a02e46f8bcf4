package models

// Account links a user to an external identity provider.
type Account struct {
	BaseModel

	UserID            string `gorm:"not null;index;size:36"`
	Provider          string `gorm:"not null;uniqueIndex:idx_provider_account;size:64"`
	ProviderAccountID string `gorm:"not null;uniqueIndex:idx_provider_account;size:191"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
