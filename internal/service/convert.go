package service

import (
	"time"

	"github.com/mmynk/todosponen/internal/circle"
	"github.com/mmynk/todosponen/internal/ledger"
	"github.com/mmynk/todosponen/internal/models"
	v1 "github.com/mmynk/todosponen/pkg/api/todosponenv1"
)

func toCircle(c *models.Circle) *v1.Circle {
	return &v1.Circle{
		Id:                 c.ID,
		Name:               c.Name,
		ContributionAmount: c.ContributionAmount,
		Frequency:          string(c.Frequency),
		ParticipantCount:   int32(c.ParticipantCount),
		StartDate:          c.StartDate.Format(time.DateOnly),
		TurnAssignmentMode: string(c.TurnAssignmentMode),
		OrganizerId:        c.OrganizerID,
		Status:             string(c.Status),
		InviteCode:         c.InviteCode,
		CurrentTurn:        int32(c.CurrentTurn),
		PayoutStatus:       string(c.PayoutStatus),
		AllowHalfShares:    c.AllowHalfShares,
		MaxHalfShares:      int32(c.MaxHalfShares),
		PotAmount:          c.PotAmount(),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func toCircles(circles []*models.Circle) []*v1.Circle {
	out := make([]*v1.Circle, len(circles))
	for i, c := range circles {
		out[i] = toCircle(c)
	}
	return out
}

func toMembership(m *models.Membership, names map[string]*models.User) *v1.Membership {
	pb := &v1.Membership{
		Id:              m.ID,
		CircleId:        m.CircleID,
		UserId:          m.UserID,
		TurnNumber:      int32(m.TurnNumber),
		Status:          string(m.Status),
		SharePercentage: m.Share.Percentage(),
		PaymentStatus:   string(m.PaymentStatus),
		PaymentProofRef: m.PaymentProofRef,
		JoinedAt:        m.JoinedAt,
	}
	if u, ok := names[m.UserID]; ok {
		pb.DisplayName = u.DisplayName
	}
	return pb
}

func toMemberships(memberships []models.Membership, names map[string]*models.User) []*v1.Membership {
	out := make([]*v1.Membership, len(memberships))
	for i := range memberships {
		out[i] = toMembership(&memberships[i], names)
	}
	return out
}

func toAvailability(circleID string, a *ledger.Availability) *v1.Availability {
	pb := &v1.Availability{
		CircleId:         circleID,
		ParticipantCount: int32(a.ParticipantCount),
		AllowHalfShares:  a.AllowHalfShares,
		MaxHalfShares:    int32(a.MaxHalfShares),
		HalfShareHolders: int32(a.HalfShareHolders),
		Slots:            make([]*v1.Slot, len(a.Slots)),
		SelectableFull:   toInt32s(a.Selectable(models.ShareFull)),
		SelectableHalf:   toInt32s(a.Selectable(models.ShareHalf)),
	}
	for i, s := range a.Slots {
		pb.Slots[i] = &v1.Slot{
			Turn:          int32(s.Turn),
			State:         string(s.State),
			OccupiedShare: s.Occupied.Percentage(),
			HolderIds:     s.Holders,
		}
	}
	return pb
}

func toSchedule(entries []circle.ScheduleEntry) []*v1.ScheduleEntry {
	out := make([]*v1.ScheduleEntry, len(entries))
	for i, e := range entries {
		out[i] = &v1.ScheduleEntry{
			Turn:      int32(e.Turn),
			DueDate:   e.DueDate.Format(time.DateOnly),
			HolderIds: e.Holders,
			Current:   e.Current,
		}
	}
	return out
}

func toUser(u *models.User) *v1.User {
	return &v1.User{
		Id:               u.ID,
		Email:            u.Email,
		DisplayName:      u.DisplayName,
		Role:             string(u.Role),
		BankName:         u.BankName,
		AccountNumber:    u.AccountNumber,
		NationalId:       u.NationalID,
		HasPayoutDetails: u.Profile().HasPayoutDetails(),
		CreatedAt:        u.CreatedAt,
	}
}

func toInt32s(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}
