package model

import (
	"time"

	"github.com/secmon-lab/copilot-dash/pkg/domain/types"
)

// Seat represents one Copilot license holder. Seats are rebuilt wholesale
// on every fetch cycle; the login is the only stable identity.
type Seat struct {
	Login     types.Login `json:"login"`
	Name      string      `json:"name,omitempty"`
	Email     string      `json:"email,omitempty"`
	AvatarURL string      `json:"avatarUrl,omitempty"`
	PlanType  string      `json:"planType"`

	CreatedAt           *time.Time `json:"createdAt,omitempty"`
	LastAuthenticatedAt *time.Time `json:"lastAuthenticatedAt,omitempty"`
	LastActivityAt      *time.Time `json:"lastActivityAt,omitempty"`
	LastActivityEditor  string     `json:"lastActivityEditor,omitempty"`

	// IsActive is true when the seat has any recorded activity
	IsActive bool `json:"isActive"`

	// PRCount is populated by the cross-reference step, counting tracked
	// PRs where this login appears in the assignee list
	PRCount int `json:"prCount"`

	// AgentUsageCount is a simulated figure derived from activity recency.
	// It is NOT a measurement; see usecase.SimulatedMetrics.
	AgentUsageCount int `json:"agentUsageCount"`
}

// Clone returns a copy of the seat. The cross-reference step merges
// derived fields into copies rather than mutating fetched records.
func (s *Seat) Clone() *Seat {
	copied := *s
	return &copied
}

// SeatList is the result of one seat fetch cycle. TotalSeats is the
// server-reported total, which may exceed len(Seats) on a partial fetch.
type SeatList struct {
	TotalSeats int     `json:"totalSeats"`
	Seats      []*Seat `json:"seats"`
}
