package domain

import "strings"

// ParticipantPending is the invitation status of a companion who has not yet
// accepted. Any other value is treated as a confirmed member.
const ParticipantPending = "pending"

// Participant is a user's membership in a trip. The same shape is used for
// the trip owner.
type Participant struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Status    string `json:"status,omitempty"`
}

// IsPending reports whether the participant's invitation is still open.
func (p Participant) IsPending() bool {
	return p.Status == ParticipantPending
}

// DisplayName returns "First Last" when either part is set, else the username.
func (p Participant) DisplayName() string {
	if full := strings.TrimSpace(p.FirstName + " " + p.LastName); full != "" {
		return full
	}
	return p.Username
}
