package sanitize

import "math"

const (
	DefaultCoordinate = 100
	MinCoordinate     = 0
	MaxCoordinate     = 2400
	MaxNoteText       = 400
)

// Coordinate clamps a board position into range; non-numbers yield fallback.
func Coordinate(v any, fallback int) int {
	f, ok := Number(v)
	if !ok {
		return fallback
	}
	f = math.Min(MaxCoordinate, math.Max(MinCoordinate, f))
	return int(math.Round(f))
}

func NoteText(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return Truncate(s, MaxNoteText)
}
