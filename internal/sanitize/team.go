package sanitize

import (
	"strings"

	"github.com/coffee-focus/coffeefocus/internal/apperr"
	"github.com/coffee-focus/coffeefocus/internal/models"
)

const MaxTeamName = 120

func TeamName(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", apperr.Validation("Team name is required")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.Validation("Team name cannot be empty")
	}
	return Truncate(s, MaxTeamName), nil
}

// Role defaults to member when v is absent or blank.
func Role(v any) (string, error) {
	s, _ := v.(string)
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return models.RoleMember, nil
	case models.RoleOwner, models.RoleAdmin, models.RoleMember:
		return s, nil
	default:
		return "", apperr.Validation("role must be one of owner, admin, member")
	}
}
