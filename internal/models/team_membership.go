package models

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type TeamMembership struct {
	BaseModel

	UserID string `gorm:"not null;uniqueIndex:idx_user_team;size:36"`
	TeamID string `gorm:"not null;uniqueIndex:idx_user_team;index;size:36"`
	Role   string `gorm:"not null;default:member;size:16"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Team Team `gorm:"foreignKey:TeamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (m TeamMembership) CanManage() bool {
	return m.Role == RoleOwner || m.Role == RoleAdmin
}
