package model

import (
	"time"

	"github.com/secmon-lab/copilot-dash/pkg/domain/types"
)

// PullRequest represents one pull request matching the tracked-author
// query, normalized for aggregation. Number plus Repository form the
// composite key. Records are rebuilt wholesale on every fetch cycle.
type PullRequest struct {
	Number     int    `json:"number"`
	Repository string `json:"repository"`
	Title      string `json:"title"`
	URL        string `json:"url"`

	State    types.PRState `json:"state"`
	IsMerged bool          `json:"isMerged"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`

	// DaysToClose is (closed - created) in days, one decimal place.
	// Nil while the PR is open.
	DaysToClose *float64 `json:"daysToClose,omitempty"`

	// CustomAgent is the tag extracted from the "Custom agent used:"
	// marker line in the PR body, or types.NoAgent when absent
	CustomAgent string `json:"customAgent"`

	Assignees []types.Login `json:"assignees"`
	Comments  int           `json:"comments"`
}

// AssignedTo reports whether the given login appears in the assignee list
func (p *PullRequest) AssignedTo(login types.Login) bool {
	for _, a := range p.Assignees {
		if a == login {
			return true
		}
	}
	return false
}
