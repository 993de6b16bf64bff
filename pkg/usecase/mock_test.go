package usecase_test

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/copilot-dash/pkg/service/github"
)

// mockGitHub is a page-oriented fake of the GitHub service. Pages are
// served in order; a page index listed in failAt returns an error instead.
type mockGitHub struct {
	seatPages   []*github.SeatsPage
	seatFailAt  int // 1-based page number that errors; 0 = never
	seatCalls   int
	searchPages []*github.SearchPage
	searchFail  int
	searchCalls int

	users       map[string]*github.User
	userFails   map[string]bool
	userLookups []string
}

func (m *mockGitHub) CopilotSeats(ctx context.Context, org string, page, perPage int) (*github.SeatsPage, error) {
	m.seatCalls++
	if m.seatFailAt != 0 && page == m.seatFailAt {
		return nil, goerr.New("seat page failed", goerr.V("page", page))
	}
	if page > len(m.seatPages) {
		return &github.SeatsPage{}, nil
	}
	return m.seatPages[page-1], nil
}

func (m *mockGitHub) SearchPullRequests(ctx context.Context, query string, page, perPage int) (*github.SearchPage, error) {
	m.searchCalls++
	if m.searchFail != 0 && page == m.searchFail {
		return nil, goerr.New("search page failed", goerr.V("page", page))
	}
	if page > len(m.searchPages) {
		return &github.SearchPage{}, nil
	}
	return m.searchPages[page-1], nil
}

func (m *mockGitHub) GetUser(ctx context.Context, login string) (*github.User, error) {
	m.userLookups = append(m.userLookups, login)
	if m.userFails[login] {
		return nil, goerr.New("user lookup failed", goerr.V("login", login))
	}
	if u, ok := m.users[login]; ok {
		return u, nil
	}
	return &github.User{Login: login}, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
