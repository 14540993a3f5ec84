package rotation

import (
	"fmt"
	"time"

	"github.com/mmynk/todosponen/internal/models"
)

// CivilDate truncates t to midnight UTC of its calendar day.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DueDate returns start + (turn-1) periods. Weekly and biweekly periods are 7
// and 14 days; monthly periods use calendar months, clamping to the last day
// of the target month when the start day does not exist there.
func DueDate(start time.Time, freq models.Frequency, turn int) (time.Time, error) {
	if turn < 1 {
		return time.Time{}, fmt.Errorf("turn must be at least 1, got %d", turn)
	}
	start = CivilDate(start)
	n := turn - 1

	switch freq {
	case models.FrequencyWeekly:
		return start.AddDate(0, 0, 7*n), nil
	case models.FrequencyBiweekly:
		return start.AddDate(0, 0, 14*n), nil
	case models.FrequencyMonthly:
		return addMonths(start, n), nil
	}
	return time.Time{}, fmt.Errorf("unknown frequency %q", freq)
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CircleDueDate is the due date of the circle's current turn.
func CircleDueDate(c *models.Circle) (time.Time, error) {
	return DueDate(c.StartDate, c.Frequency, c.CurrentTurn)
}
