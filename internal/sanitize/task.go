package sanitize

import (
	"strings"

	"github.com/coffee-focus/coffeefocus/internal/models"
)

const (
	MaxTaskTitle = 160
	MaxTaskOwner = 120
)

var taskStatuses = map[string]bool{
	models.TaskStatusBacklog: true,
	models.TaskStatusActive:  true,
	models.TaskStatusBlocked: true,
	models.TaskStatusDone:    true,
}

func TaskStatus(v any, fallback string) string {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if taskStatuses[s] {
		return s
	}
	return fallback
}

func TaskTitle(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return Truncate(strings.TrimSpace(s), MaxTaskTitle)
}

func TaskOwner(v any) *string {
	owner := NullableString(v)
	if owner == nil {
		return nil
	}
	truncated := Truncate(*owner, MaxTaskOwner)
	return &truncated
}

func EstimateMinutes(v any) *int {
	return NonNegativeInt(v)
}

func LoggedSeconds(v any) *int {
	return NonNegativeInt(v)
}
