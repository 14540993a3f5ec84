package circle

import (
	"context"
	"time"

	"github.com/mmynk/todosponen/internal/models"
	"github.com/mmynk/todosponen/internal/rotation"
)

// ScheduleEntry is one turn of the rotation.
type ScheduleEntry struct {
	Turn    int
	DueDate time.Time
	// Holders are the user IDs receiving the pot on this turn.
	Holders []string
	// Current marks the turn being collected or paid out.
	Current bool
}

// Schedule lists every turn with its due date and the approved holders on it.
func Schedule(c *models.Circle, memberships []models.Membership) ([]ScheduleEntry, error) {
	entries := make([]ScheduleEntry, c.ParticipantCount)
	for i := range entries {
		turn := i + 1
		due, err := rotation.DueDate(c.StartDate, c.Frequency, turn)
		if err != nil {
			return nil, err
		}
		entries[i] = ScheduleEntry{
			Turn:    turn,
			DueDate: due,
			Current: c.Status == models.CircleStatusActive && c.CurrentTurn == turn,
		}
	}
	for _, m := range memberships {
		if !m.IsActive() || m.TurnNumber < 1 || m.TurnNumber > len(entries) {
			continue
		}
		entries[m.TurnNumber-1].Holders = append(entries[m.TurnNumber-1].Holders, m.UserID)
	}
	return entries, nil
}

// GetSchedule returns the circle's turn schedule.
func (e *Engine) GetSchedule(ctx context.Context, actor Actor, circleID string) ([]ScheduleEntry, error) {
	c, err := loadCircle(ctx, e.store, circleID)
	if err != nil {
		return nil, err
	}
	if err := e.requireViewer(ctx, e.store, c, actor); err != nil {
		return nil, err
	}
	memberships, err := e.store.ListMemberships(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return Schedule(c, memberships)
}
