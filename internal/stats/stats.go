// Package stats summarises focus sessions into daily totals and streaks.
package stats

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/coffee-focus/coffeefocus/internal/models"
)

const (
	WeekDays  = 7
	MaxStreak = 30
	dayLayout = "2006-01-02"
)

type Day struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Seconds int    `json:"seconds"`
	Minutes int    `json:"minutes"`
	// Percent is the bar height relative to the busiest day of the week.
	Percent float64 `json:"percent"`
}

type Summary struct {
	TodaySeconds   int    `json:"todaySeconds"`
	WeekSeconds    int    `json:"weekSeconds"`
	AllTimeSeconds int    `json:"allTimeSeconds"`
	SessionCount   int    `json:"sessionCount"`
	StreakDays     int    `json:"streakDays"`
	StreakLabel    string `json:"streakLabel"`
	Week           []Day  `json:"week"`
}

// DayKey buckets t by its UTC calendar day.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// Summarize totals sessions relative to now. Cancelled sessions do not count.
func Summarize(sessions []models.FocusSession, now time.Time) Summary {
	byDay := make(map[string]int)
	summary := Summary{}

	for _, session := range sessions {
		if session.Status == models.FocusStatusCancelled {
			continue
		}
		byDay[DayKey(session.StartedAt)] += session.DurationSeconds
		summary.AllTimeSeconds += session.DurationSeconds
		summary.SessionCount++
	}

	today := now.UTC()
	summary.TodaySeconds = byDay[DayKey(today)]

	summary.Week = make([]Day, 0, WeekDays)
	for offset := WeekDays - 1; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		key := DayKey(day)
		summary.Week = append(summary.Week, Day{
			Key:     key,
			Label:   strings.ToUpper(day.Weekday().String()[:3]),
			Seconds: byDay[key],
			Minutes: roundMinutes(byDay[key]),
		})
		summary.WeekSeconds += byDay[key]
	}

	busiest := 1
	for _, day := range summary.Week {
		busiest = max(busiest, day.Seconds)
	}
	for i := range summary.Week {
		summary.Week[i].Percent = float64(summary.Week[i].Seconds) / float64(busiest) * 100
	}

	for offset := 0; offset < MaxStreak; offset++ {
		if byDay[DayKey(today.AddDate(0, 0, -offset))] <= 0 {
			break
		}
		summary.StreakDays++
	}
	summary.StreakLabel = StreakLabel(summary.StreakDays)

	return summary
}

func StreakLabel(days int) string {
	switch days {
	case 0:
		return "No streak yet. Start today."
	case 1:
		return "1 day of focus"
	default:
		return fmt.Sprintf("%d days of focus", days)
	}
}

// FormatMMSS renders seconds as a zero padded minutes:seconds clock.
func FormatMMSS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func roundMinutes(seconds int) int {
	return int(math.Round(float64(seconds) / 60))
}

// FormatMinutesLabel renders "25 min", "2 h" or "1 h 30 min".
func FormatMinutesLabel(seconds int) string {
	minutes := roundMinutes(seconds)
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}

	hours := minutes / 60
	rest := minutes % 60
	if rest == 0 {
		return fmt.Sprintf("%d h", hours)
	}
	return fmt.Sprintf("%d h %d min", hours, rest)
}
