package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffee-focus/coffeefocus/internal/models"
)

func session(startedAt time.Time, seconds int, status string) models.FocusSession {
	return models.FocusSession{StartedAt: startedAt, DurationSeconds: seconds, Status: status}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC) // Wednesday

	sessions := []models.FocusSession{
		session(now.Add(-1*time.Hour), 1500, models.FocusStatusCompleted),
		session(now.Add(-2*time.Hour), 600, models.FocusStatusCompleted),
		session(now.AddDate(0, 0, -1), 3000, models.FocusStatusCompleted),
		session(now.AddDate(0, 0, -2), 900, models.FocusStatusCancelled),
		session(now.AddDate(0, 0, -3), 1200, models.FocusStatusCompleted),
		session(now.AddDate(0, 0, -10), 6000, models.FocusStatusCompleted),
	}

	summary := Summarize(sessions, now)

	assert.Equal(t, 2100, summary.TodaySeconds)
	assert.Equal(t, 2100+3000+1200, summary.WeekSeconds)
	assert.Equal(t, 2100+3000+1200+6000, summary.AllTimeSeconds)
	assert.Equal(t, 5, summary.SessionCount)
	assert.Equal(t, 2, summary.StreakDays)
	assert.Equal(t, "2 days of focus", summary.StreakLabel)

	require.Len(t, summary.Week, 7)
	assert.Equal(t, "2024-05-09", summary.Week[0].Key)
	assert.Equal(t, "2024-05-15", summary.Week[6].Key)
	assert.Equal(t, "WED", summary.Week[6].Label)
	assert.Equal(t, 35, summary.Week[6].Minutes)
	assert.InDelta(t, 100, summary.Week[5].Percent, 0.001)
	assert.InDelta(t, 70, summary.Week[6].Percent, 0.001)
	assert.Zero(t, summary.Week[4].Seconds)
}

func TestSummarize_StreakCapsAtThirtyDays(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	var sessions []models.FocusSession
	for i := 0; i < 45; i++ {
		sessions = append(sessions, session(now.AddDate(0, 0, -i), 60, models.FocusStatusCompleted))
	}

	summary := Summarize(sessions, now)
	assert.Equal(t, MaxStreak, summary.StreakDays)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil, time.Now())

	assert.Zero(t, summary.AllTimeSeconds)
	assert.Zero(t, summary.StreakDays)
	assert.Equal(t, "No streak yet. Start today.", summary.StreakLabel)
	assert.Len(t, summary.Week, 7)
}

func TestDayKey_UsesUTC(t *testing.T) {
	zone := time.FixedZone("UTC+9", 9*60*60)
	assert.Equal(t, "2024-05-14", DayKey(time.Date(2024, 5, 15, 3, 0, 0, 0, zone)))
}

func TestStreakLabel(t *testing.T) {
	assert.Equal(t, "1 day of focus", StreakLabel(1))
	assert.Equal(t, "12 days of focus", StreakLabel(12))
}

func TestFormatMMSS(t *testing.T) {
	assert.Equal(t, "00:00", FormatMMSS(-5))
	assert.Equal(t, "01:05", FormatMMSS(65))
	assert.Equal(t, "50:00", FormatMMSS(3000))
	assert.Equal(t, "125:00", FormatMMSS(7500))
}

func TestFormatMinutesLabel(t *testing.T) {
	assert.Equal(t, "0 min", FormatMinutesLabel(20))
	assert.Equal(t, "1 min", FormatMinutesLabel(31))
	assert.Equal(t, "25 min", FormatMinutesLabel(1500))
	assert.Equal(t, "2 h", FormatMinutesLabel(7200))
	assert.Equal(t, "1 h 30 min", FormatMinutesLabel(5400))
}
