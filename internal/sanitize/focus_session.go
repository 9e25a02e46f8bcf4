package sanitize

import (
	"strings"

	"github.com/coffee-focus/coffeefocus/internal/models"
)

const MaxSessionNote = 600

var focusStatuses = map[string]bool{
	models.FocusStatusRunning:   true,
	models.FocusStatusCompleted: true,
	models.FocusStatusCancelled: true,
}

func FocusSessionStatus(v any, fallback string) string {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if focusStatuses[s] {
		return s
	}
	return fallback
}

func DurationSeconds(v any, fallback int) int {
	if n := NonNegativeInt(v); n != nil {
		return *n
	}
	return fallback
}

func SessionNote(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = Truncate(s, MaxSessionNote)
	return &s
}
