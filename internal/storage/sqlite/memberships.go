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

const membershipColumns = `id, circle_id, user_id, turn_number, status, share_halves,
	payment_status, payment_proof_ref, joined_at, updated_at`

// CreateMembership inserts a new membership. The (circle_id, user_id) unique
// key rejects a second membership for the same user.
func (s *queries) CreateMembership(ctx context.Context, m *models.Membership) error {
	// Generate ID if not set
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if m.JoinedAt == 0 {
		m.JoinedAt = now
	}
	m.UpdatedAt = now

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO memberships (`+membershipColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.CircleID, m.UserID, m.TurnNumber, string(m.Status), int(m.Share),
		string(m.PaymentStatus), m.PaymentProofRef, m.JoinedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("membership for user %s in circle %s: %w", m.UserID, m.CircleID, storage.ErrConflict)
		}
		return fmt.Errorf("failed to insert membership: %w", err)
	}

	return nil
}

// GetMembership retrieves a membership by ID.
func (s *queries) GetMembership(ctx context.Context, membershipID string) (*models.Membership, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE id = ?`, membershipID)
	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("membership %s: %w", membershipID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// GetMembershipByUser retrieves the membership of userID in circleID.
func (s *queries) GetMembershipByUser(ctx context.Context, circleID, userID string) (*models.Membership, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE circle_id = ? AND user_id = ?`,
		circleID, userID)
	m, err := scanMembership(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("membership of %s in circle %s: %w", userID, circleID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// ListMemberships retrieves every membership of a circle.
func (s *queries) ListMemberships(ctx context.Context, circleID string) ([]models.Membership, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE circle_id = ? ORDER BY turn_number, joined_at, id`,
		circleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []models.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}

	return memberships, nil
}

// UpdateMembership writes the mutable membership fields back.
func (s *queries) UpdateMembership(ctx context.Context, m *models.Membership) error {
	m.UpdatedAt = time.Now().Unix()

	result, err := s.q.ExecContext(ctx,
		`UPDATE memberships
		 SET turn_number = ?, status = ?, payment_status = ?, payment_proof_ref = ?, updated_at = ?
		 WHERE id = ?`,
		m.TurnNumber, string(m.Status), string(m.PaymentStatus), m.PaymentProofRef, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("membership %s: %w", m.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteMembership removes a membership by ID.
func (s *queries) DeleteMembership(ctx context.Context, membershipID string) error {
	result, err := s.q.ExecContext(ctx, "DELETE FROM memberships WHERE id = ?", membershipID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("membership %s: %w", membershipID, storage.ErrNotFound)
	}

	return nil
}

func scanMembership(row scanner) (*models.Membership, error) {
	var (
		m                     models.Membership
		status, paymentStatus string
		share                 int
	)
	err := row.Scan(&m.ID, &m.CircleID, &m.UserID, &m.TurnNumber, &status, &share,
		&paymentStatus, &m.PaymentProofRef, &m.JoinedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	m.Status = models.MembershipStatus(status)
	m.PaymentStatus = models.PaymentStatus(paymentStatus)
	m.Share = models.Share(share)

	if !m.Status.Valid() || !m.PaymentStatus.Valid() || !m.Share.Valid() {
		return nil, fmt.Errorf("membership %s has invalid stored state (status=%q payment=%q share=%d)",
			m.ID, status, paymentStatus, share)
	}

	return &m, nil
}
