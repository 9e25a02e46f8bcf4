package sanitize

import (
	"math"
	"strings"

	"github.com/coffee-focus/coffeefocus/internal/apperr"
)

const (
	MaxProjectNoteBody = 600
	MaxAuthor          = 120
	DefaultAuthor      = "You"
)

// FocusGoalMinutes rounds a finite number and keeps it at one minute or more.
func FocusGoalMinutes(v any) *int {
	f, ok := Number(v)
	if !ok {
		return nil
	}
	n := int(math.Max(1, math.Round(f)))
	return &n
}

func RequiredString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func ProjectNoteBody(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", apperr.Validation("Note body is required")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.Validation("Note body cannot be empty")
	}
	return Truncate(s, MaxProjectNoteBody), nil
}

func Author(v any) string {
	s, ok := RequiredString(v)
	if !ok {
		return DefaultAuthor
	}
	return Truncate(s, MaxAuthor)
}
