package usecase

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/secmon-lab/copilot-dash/pkg/domain/model"
	"github.com/secmon-lab/copilot-dash/pkg/domain/types"
	"github.com/secmon-lab/copilot-dash/pkg/service/github"
	"github.com/secmon-lab/copilot-dash/pkg/utils/logging"
)

const searchPageSize = 100

var (
	// first form: https://host/org/repo/pull/42 or .../issues/42
	repoPullPattern = regexp.MustCompile(`^https?://[^/]+/([^/]+)/([^/]+)/(?:pull|issues)/`)
	// fallback form: https://host/org/repo
	repoGenericPattern = regexp.MustCompile(`^https?://[^/]+/([^/]+)/([^/]+)`)

	agentMarkerPattern = regexp.MustCompile(`(?m)Custom agent used:[ \t]*(.+)$`)
)

// FetchPullRequests pages through the issue-search endpoint for all PRs
// matching the tracked-author query and returns normalized records.
// Pagination stops on a short page. Failure policy is the same as
// FetchSeats: abort on page error and return the accumulated partial list.
func (uc *UseCases) FetchPullRequests(ctx context.Context) []*model.PullRequest {
	logger := logging.From(ctx)
	query := fmt.Sprintf("org:%s author:%s type:pr", uc.org, uc.authorFilter)

	var prs []*model.PullRequest
	for page := 1; ; page++ {
		resp, err := uc.github.SearchPullRequests(ctx, query, page, searchPageSize)
		if err != nil {
			logger.Warn("PR search aborted, continuing with partial data",
				"page", page,
				"accumulated", len(prs),
				"error", err)
			break
		}

		for _, item := range resp.Items {
			prs = append(prs, convertPullRequest(item))
		}

		if len(resp.Items) < searchPageSize {
			break
		}
		if !sleep(ctx, uc.pageDelay) {
			break
		}
	}

	logger.Debug("fetched tracked pull requests", "count", len(prs), "query", query)

	return prs
}

func convertPullRequest(item github.Issue) *model.PullRequest {
	state := types.PRStateOpen
	if item.State == "closed" {
		state = types.PRStateClosed
	}

	pr := &model.PullRequest{
		Number:      item.Number,
		Repository:  ParseRepository(item.HTMLURL),
		Title:       item.Title,
		URL:         item.HTMLURL,
		State:       state,
		IsMerged:    item.MergedAt != nil,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
		ClosedAt:    item.ClosedAt,
		CustomAgent: ExtractCustomAgent(item.Body),
		Comments:    item.Comments,
	}

	if item.ClosedAt != nil {
		days := item.ClosedAt.Sub(item.CreatedAt).Hours() / 24
		rounded := math.Round(days*10) / 10
		pr.DaysToClose = &rounded
	}

	for _, a := range item.Assignees {
		pr.Assignees = append(pr.Assignees, types.Login(a))
	}
	// legacy single-assignee field, still populated by older deployments
	if len(pr.Assignees) == 0 && item.Assignee != "" {
		pr.Assignees = append(pr.Assignees, types.Login(item.Assignee))
	}

	return pr
}

// ParseRepository resolves an "org/repo" pair from a PR web URL. It first
// matches the /org/repo/pull/ form, then falls back to a generic
// host/org/repo match, and yields types.UnknownRepository when neither
// applies.
func ParseRepository(rawURL string) string {
	if m := repoPullPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1] + "/" + m[2]
	}
	if m := repoGenericPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1] + "/" + m[2]
	}
	return types.UnknownRepository
}

// ExtractCustomAgent searches a PR body for the literal marker line
// "Custom agent used: <value>". The captured value is trimmed and leading
// non-alphanumeric characters (markdown emphasis, emoji) are stripped.
// Returns types.NoAgent when the marker is absent or the value is empty
// after cleaning.
func ExtractCustomAgent(body string) string {
	m := agentMarkerPattern.FindStringSubmatch(body)
	if m == nil {
		return types.NoAgent
	}

	value := strings.TrimSpace(m[1])
	value = strings.TrimLeftFunc(value, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	value = strings.TrimSpace(value)
	if value == "" {
		return types.NoAgent
	}
	return value
}
