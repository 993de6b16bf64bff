package github

import (
	"context"
	"time"
)

// Service provides access to the GitHub REST API surface the dashboard
// consumes: Copilot seat billing, issue search and user lookup.
// Pagination policy (stop conditions, delays, partial results) belongs to
// the callers; the service fetches single pages.
type Service interface {
	// CopilotSeats fetches one page of the Copilot seats billing endpoint
	CopilotSeats(ctx context.Context, org string, page, perPage int) (*SeatsPage, error)

	// SearchPullRequests fetches one page of the issue-search endpoint
	// for the given search query
	SearchPullRequests(ctx context.Context, query string, page, perPage int) (*SearchPage, error)

	// GetUser resolves a login to its user profile
	GetUser(ctx context.Context, login string) (*User, error)
}

// SeatsPage is one page of the seats billing endpoint
type SeatsPage struct {
	// TotalSeats is the server-reported total across all pages
	TotalSeats int
	Seats      []Seat
}

// Seat is one raw seat record as returned by the billing endpoint
type Seat struct {
	Assignee            User
	PlanType            string
	CreatedAt           *time.Time
	UpdatedAt           *time.Time
	LastAuthenticatedAt *time.Time
	LastActivityAt      *time.Time
	LastActivityEditor  string
}

// SearchPage is one page of the issue-search endpoint
type SearchPage struct {
	TotalCount int
	Items      []Issue
}

// Issue is one raw search result. MergedAt comes from the embedded
// pull_request link object and may be absent even for merged PRs,
// depending on token scope.
type Issue struct {
	Number    int
	Title     string
	Body      string
	State     string
	HTMLURL   string
	CreatedAt time.Time
	UpdatedAt time.Time
	ClosedAt  *time.Time
	MergedAt  *time.Time

	// Assignees is the multi-assignee list; Assignee is the legacy
	// single field still populated by older deployments
	Assignee  string
	Assignees []string

	Comments int
}

// User is a user profile from the per-user lookup endpoint
type User struct {
	Login     string
	Name      string
	Email     string
	AvatarURL string
}
