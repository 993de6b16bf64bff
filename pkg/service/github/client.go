package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
)

const defaultHTTPTimeout = 30 * time.Second

type client struct {
	gh *gh.Client
}

// New creates a GitHub Service authenticated with a bearer token.
// baseURL may point at a GitHub Enterprise instance; an empty baseURL
// targets github.com. The API version header is pinned by the underlying
// client on every request.
func New(baseURL, token string) (Service, error) {
	if token == "" {
		return nil, goerr.New("GitHub token is required")
	}

	// Per-call timeout on the outbound client; the pipeline itself has no
	// overall deadline.
	baseClient := &http.Client{Timeout: defaultHTTPTimeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, baseClient)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))

	ghClient := gh.NewClient(httpClient)
	if baseURL != "" {
		var err error
		ghClient, err = ghClient.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to set GitHub base URL", goerr.V("baseURL", baseURL))
		}
	}

	return &client{gh: ghClient}, nil
}

// seatsResponse mirrors the seats billing endpoint. go-github's typed
// Copilot API drops last_authenticated_at, so the endpoint is called
// through the raw request API with our own wire shape.
type seatsResponse struct {
	TotalSeats int       `json:"total_seats"`
	Seats      []rawSeat `json:"seats"`
}

type rawSeat struct {
	Assignee            rawUser    `json:"assignee"`
	PlanType            string     `json:"plan_type"`
	CreatedAt           *time.Time `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at"`
	LastAuthenticatedAt *time.Time `json:"last_authenticated_at"`
	LastActivityAt      *time.Time `json:"last_activity_at"`
	LastActivityEditor  string     `json:"last_activity_editor"`
}

type rawUser struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func (c *client) CopilotSeats(ctx context.Context, org string, page, perPage int) (*SeatsPage, error) {
	u := fmt.Sprintf("orgs/%s/copilot/billing/seats?page=%d&per_page=%d", org, page, perPage)
	req, err := c.gh.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build seats request", goerr.V("org", org))
	}

	var resp seatsResponse
	if _, err := c.gh.Do(ctx, req, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch Copilot seats",
			goerr.V("org", org), goerr.V("page", page))
	}

	result := &SeatsPage{
		TotalSeats: resp.TotalSeats,
		Seats:      make([]Seat, len(resp.Seats)),
	}
	for i, s := range resp.Seats {
		result.Seats[i] = Seat{
			Assignee: User{
				Login:     s.Assignee.Login,
				Name:      s.Assignee.Name,
				Email:     s.Assignee.Email,
				AvatarURL: s.Assignee.AvatarURL,
			},
			PlanType:            s.PlanType,
			CreatedAt:           s.CreatedAt,
			UpdatedAt:           s.UpdatedAt,
			LastAuthenticatedAt: s.LastAuthenticatedAt,
			LastActivityAt:      s.LastActivityAt,
			LastActivityEditor:  s.LastActivityEditor,
		}
	}

	return result, nil
}

func (c *client) SearchPullRequests(ctx context.Context, query string, page, perPage int) (*SearchPage, error) {
	opts := &gh.SearchOptions{
		Sort:  "created",
		Order: "desc",
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	result, _, err := c.gh.Search.Issues(ctx, query, opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search pull requests",
			goerr.V("query", query), goerr.V("page", page))
	}

	resp := &SearchPage{
		TotalCount: result.GetTotal(),
		Items:      make([]Issue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		resp.Items = append(resp.Items, convertIssue(issue))
	}

	return resp, nil
}

func (c *client) GetUser(ctx context.Context, login string) (*User, error) {
	user, _, err := c.gh.Users.Get(ctx, login)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch user", goerr.V("login", login))
	}

	return &User{
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		Email:     user.GetEmail(),
		AvatarURL: user.GetAvatarURL(),
	}, nil
}

func convertIssue(issue *gh.Issue) Issue {
	item := Issue{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		State:     issue.GetState(),
		HTMLURL:   issue.GetHTMLURL(),
		CreatedAt: issue.GetCreatedAt().Time,
		UpdatedAt: issue.GetUpdatedAt().Time,
		Comments:  issue.GetComments(),
	}

	if issue.ClosedAt != nil {
		t := issue.ClosedAt.Time
		item.ClosedAt = &t
	}
	if links := issue.PullRequestLinks; links != nil && links.MergedAt != nil {
		t := links.MergedAt.Time
		item.MergedAt = &t
	}

	if issue.Assignee != nil {
		item.Assignee = issue.Assignee.GetLogin()
	}
	for _, a := range issue.Assignees {
		item.Assignees = append(item.Assignees, a.GetLogin())
	}

	return item
}
