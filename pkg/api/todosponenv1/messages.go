// Package todosponenv1 holds the request and response messages of the
// todosponen.v1 Connect services. Messages travel as JSON.
package todosponenv1

// Circle is a rotating savings group. Dates are YYYY-MM-DD civil dates.
type Circle struct {
	Id                 string `json:"id"`
	Name               string `json:"name"`
	ContributionAmount int64  `json:"contributionAmount"`
	Frequency          string `json:"frequency"`
	ParticipantCount   int32  `json:"participantCount"`
	StartDate          string `json:"startDate"`
	TurnAssignmentMode string `json:"turnAssignmentMode"`
	OrganizerId        string `json:"organizerId"`
	Status             string `json:"status"`
	InviteCode         string `json:"inviteCode,omitempty"`
	CurrentTurn        int32  `json:"currentTurn"`
	PayoutStatus       string `json:"payoutStatus"`
	AllowHalfShares    bool   `json:"allowHalfShares"`
	MaxHalfShares      int32  `json:"maxHalfShares"`
	PotAmount          int64  `json:"potAmount"`
	CreatedAt          int64  `json:"createdAt"`
	UpdatedAt          int64  `json:"updatedAt"`
}

// Membership links a user to a circle and a turn.
type Membership struct {
	Id              string  `json:"id"`
	CircleId        string  `json:"circleId"`
	UserId          string  `json:"userId"`
	DisplayName     string  `json:"displayName,omitempty"`
	TurnNumber      int32   `json:"turnNumber"`
	Status          string  `json:"status"`
	SharePercentage float64 `json:"sharePercentage"`
	PaymentStatus   string  `json:"paymentStatus"`
	PaymentProofRef string  `json:"paymentProofRef,omitempty"`
	JoinedAt        int64   `json:"joinedAt"`
}

// Slot is one turn of the availability view.
type Slot struct {
	Turn          int32    `json:"turn"`
	State         string   `json:"state"`
	OccupiedShare float64  `json:"occupiedShare"`
	HolderIds     []string `json:"holderIds,omitempty"`
}

// Availability lists every turn and which ones a joiner could pick.
type Availability struct {
	CircleId         string  `json:"circleId"`
	ParticipantCount int32   `json:"participantCount"`
	AllowHalfShares  bool    `json:"allowHalfShares"`
	MaxHalfShares    int32   `json:"maxHalfShares"`
	HalfShareHolders int32   `json:"halfShareHolders"`
	Slots            []*Slot `json:"slots"`
	SelectableFull   []int32 `json:"selectableFull"`
	SelectableHalf   []int32 `json:"selectableHalf"`
}

// ScheduleEntry is one turn with its due date.
type ScheduleEntry struct {
	Turn      int32    `json:"turn"`
	DueDate   string   `json:"dueDate"`
	HolderIds []string `json:"holderIds,omitempty"`
	Current   bool     `json:"current"`
}

// User is an account with its payout profile.
type User struct {
	Id               string `json:"id"`
	Email            string `json:"email"`
	DisplayName      string `json:"displayName"`
	Role             string `json:"role"`
	BankName         string `json:"bankName,omitempty"`
	AccountNumber    string `json:"accountNumber,omitempty"`
	NationalId       string `json:"nationalId,omitempty"`
	HasPayoutDetails bool   `json:"hasPayoutDetails"`
	CreatedAt        int64  `json:"createdAt"`
}

type CreateCircleRequest struct {
	Name               string `json:"name"`
	ContributionAmount int64  `json:"contributionAmount"`
	Frequency          string `json:"frequency"`
	ParticipantCount   int32  `json:"participantCount"`
	StartDate          string `json:"startDate"`
	TurnAssignmentMode string `json:"turnAssignmentMode"`
	AllowHalfShares    bool   `json:"allowHalfShares"`
	MaxHalfShares      int32  `json:"maxHalfShares"`
}

type CreateCircleResponse struct {
	Circle *Circle `json:"circle"`
}

type GetCircleRequest struct {
	CircleId string `json:"circleId"`
}

type GetCircleResponse struct {
	Circle *Circle `json:"circle"`
}

type PreviewCircleRequest struct {
	InviteCode string `json:"inviteCode"`
}

type PreviewCircleResponse struct {
	Circle       *Circle       `json:"circle"`
	Availability *Availability `json:"availability"`
}

type ListMyCirclesRequest struct{}

type ListMyCirclesResponse struct {
	Circles []*Circle `json:"circles"`
}

type GetAvailabilityRequest struct {
	CircleId string `json:"circleId"`
}

type GetAvailabilityResponse struct {
	Availability *Availability `json:"availability"`
}

type GetScheduleRequest struct {
	CircleId string `json:"circleId"`
}

type GetScheduleResponse struct {
	Entries []*ScheduleEntry `json:"entries"`
}

type RequestJoinRequest struct {
	InviteCode      string  `json:"inviteCode"`
	TurnNumber      int32   `json:"turnNumber"`
	SharePercentage float64 `json:"sharePercentage"`
}

type RequestJoinResponse struct {
	Membership *Membership `json:"membership"`
}

type ApproveMembershipRequest struct {
	MembershipId string `json:"membershipId"`
}

type ApproveMembershipResponse struct {
	Membership *Membership `json:"membership"`
}

type RejectMembershipRequest struct {
	MembershipId string `json:"membershipId"`
}

type RejectMembershipResponse struct {
	Membership *Membership `json:"membership"`
}

type ListMembershipsRequest struct {
	CircleId string `json:"circleId"`
}

type ListMembershipsResponse struct {
	Memberships []*Membership `json:"memberships"`
}

type LockInRequest struct {
	CircleId string `json:"circleId"`
}

type LockInResponse struct {
	Circle *Circle `json:"circle"`
}

// SubmitPaymentProofRequest carries the proof file, base64 encoded on the wire.
type SubmitPaymentProofRequest struct {
	CircleId string `json:"circleId"`
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

type SubmitPaymentProofResponse struct {
	Membership *Membership `json:"membership"`
}

type ConfirmPaymentRequest struct {
	MembershipId string `json:"membershipId"`
}

type ConfirmPaymentResponse struct {
	Membership *Membership `json:"membership"`
}

type MarkOverdueRequest struct {
	CircleId string `json:"circleId"`
}

type MarkOverdueResponse struct {
	Memberships []*Membership `json:"memberships"`
}

type ConfirmPayoutRequest struct {
	CircleId string `json:"circleId"`
}

type ConfirmPayoutResponse struct {
	Circle *Circle `json:"circle"`
}

type AdvanceCycleRequest struct {
	CircleId string `json:"circleId"`
}

type AdvanceCycleResponse struct {
	Circle *Circle `json:"circle"`
}

type SuspendCircleRequest struct {
	CircleId string `json:"circleId"`
}

type SuspendCircleResponse struct {
	Circle *Circle `json:"circle"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetProfileRequest struct{}

type GetProfileResponse struct {
	User *User `json:"user"`
}

type UpdateProfileRequest struct {
	DisplayName   string `json:"displayName"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	NationalId    string `json:"nationalId"`
	PushToken     string `json:"pushToken"`
}

type UpdateProfileResponse struct {
	User *User `json:"user"`
}
