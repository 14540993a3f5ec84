package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/todosponen/internal/models"
	"github.com/mmynk/todosponen/internal/storage"
)

const circleColumns = `id, name, contribution_amount, frequency, participant_count, start_date,
	turn_assignment_mode, organizer_id, status, invite_code, current_turn, payout_status,
	allow_half_shares, max_half_shares, created_at, updated_at`

// CreateCircle persists a new circle to the database.
func (s *queries) CreateCircle(ctx context.Context, circle *models.Circle) error {
	// Generate ID if not set
	if circle.ID == "" {
		circle.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if circle.CreatedAt == 0 {
		circle.CreatedAt = now
	}
	circle.UpdatedAt = now
	if circle.CurrentTurn == 0 {
		circle.CurrentTurn = 1
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO circles (`+circleColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		circle.ID, circle.Name, circle.ContributionAmount, string(circle.Frequency),
		circle.ParticipantCount, circle.StartDate.Format(time.DateOnly),
		string(circle.TurnAssignmentMode), circle.OrganizerID, string(circle.Status),
		circle.InviteCode, circle.CurrentTurn, string(circle.PayoutStatus),
		boolToInt(circle.AllowHalfShares), circle.MaxHalfShares, circle.CreatedAt, circle.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invite code %s: %w", circle.InviteCode, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert circle: %w", err)
	}

	return nil
}

// GetCircle retrieves a circle by ID.
func (s *queries) GetCircle(ctx context.Context, circleID string) (*models.Circle, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+circleColumns+` FROM circles WHERE id = ?`, circleID)
	circle, err := scanCircle(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("circle %s: %w", circleID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get circle: %w", err)
	}
	return circle, nil
}

// GetCircleByInviteCode retrieves a circle by its invite code.
func (s *queries) GetCircleByInviteCode(ctx context.Context, code string) (*models.Circle, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+circleColumns+` FROM circles WHERE invite_code = ?`, code)
	circle, err := scanCircle(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invite code %s: %w", code, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get circle by invite code: %w", err)
	}
	return circle, nil
}

// UpdateCircle writes the mutable circle fields back.
func (s *queries) UpdateCircle(ctx context.Context, circle *models.Circle) error {
	circle.UpdatedAt = time.Now().Unix()

	result, err := s.q.ExecContext(ctx,
		`UPDATE circles SET name = ?, status = ?, current_turn = ?, payout_status = ?, updated_at = ?
		 WHERE id = ?`,
		circle.Name, string(circle.Status), circle.CurrentTurn, string(circle.PayoutStatus),
		circle.UpdatedAt, circle.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update circle: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("circle %s: %w", circle.ID, storage.ErrNotFound)
	}

	return nil
}

// ListCirclesForUser retrieves circles the user organizes or is a live member of.
func (s *queries) ListCirclesForUser(ctx context.Context, userID string) ([]*models.Circle, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+circleColumns+` FROM circles
		 WHERE organizer_id = ?
		    OR id IN (SELECT circle_id FROM memberships WHERE user_id = ? AND status IN ('pending', 'active'))
		 ORDER BY created_at DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list circles: %w", err)
	}
	defer rows.Close()

	var circles []*models.Circle
	for rows.Next() {
		circle, err := scanCircle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan circle: %w", err)
		}
		circles = append(circles, circle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate circles: %w", err)
	}

	return circles, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCircle(row scanner) (*models.Circle, error) {
	var (
		c                         models.Circle
		frequency, mode           string
		status, payout, startDate string
		allowHalf                 int
	)
	err := row.Scan(&c.ID, &c.Name, &c.ContributionAmount, &frequency, &c.ParticipantCount, &startDate,
		&mode, &c.OrganizerID, &status, &c.InviteCode, &c.CurrentTurn, &payout,
		&allowHalf, &c.MaxHalfShares, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.Frequency = models.Frequency(frequency)
	c.TurnAssignmentMode = models.TurnAssignmentMode(mode)
	c.Status = models.CircleStatus(status)
	c.PayoutStatus = models.PayoutStatus(payout)
	c.AllowHalfShares = allowHalf != 0

	if !c.Frequency.Valid() || !c.TurnAssignmentMode.Valid() || !c.Status.Valid() || !c.PayoutStatus.Valid() {
		return nil, fmt.Errorf("circle %s has invalid stored state (frequency=%q mode=%q status=%q payout=%q)",
			c.ID, frequency, mode, status, payout)
	}

	c.StartDate, err = time.Parse(time.DateOnly, startDate)
	if err != nil {
		return nil, fmt.Errorf("circle %s has invalid start date %q: %w", c.ID, startDate, err)
	}

	return &c, nil
}
