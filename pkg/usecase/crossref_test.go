package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/copilot-dash/pkg/domain/model"
	"github.com/secmon-lab/copilot-dash/pkg/domain/types"
	"github.com/secmon-lab/copilot-dash/pkg/service/github"
	"github.com/secmon-lab/copilot-dash/pkg/usecase"
)

func assignedPR(login string) *model.PullRequest {
	return &model.PullRequest{
		Repository: "acme/widgets",
		State:      types.PRStateOpen,
		Assignees:  []types.Login{types.Login(login)},
	}
}

func TestCrossReference(t *testing.T) {
	ctx := context.Background()
	lastActivity := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)

	t.Run("counts assigned PRs for active seats only", func(t *testing.T) {
		mock := &mockGitHub{users: map[string]*github.User{
			"alice": {Login: "alice", Name: "Alice Example"},
		}}
		uc := usecase.New(mock, "acme", usecase.WithLookupDelay(0))

		seats := []*model.Seat{
			activeSeat("alice", lastActivity, "vscode/1"),
			idleSeat("bob"),
		}
		prs := []*model.PullRequest{
			assignedPR("alice"),
			assignedPR("alice"),
			assignedPR("bob"), // idle seat, never counted
		}

		out := uc.CrossReference(ctx, seats, prs)

		gt.Value(t, out[0].PRCount).Equal(2)
		gt.Value(t, out[0].Name).Equal("Alice Example")
		gt.Value(t, out[1].PRCount).Equal(0)

		// inputs stay untouched
		gt.Value(t, seats[0].PRCount).Equal(0)
		gt.Value(t, seats[0].Name).Equal("")
	})

	t.Run("idempotent over repeated runs", func(t *testing.T) {
		mock := &mockGitHub{}
		uc := usecase.New(mock, "acme", usecase.WithLookupDelay(0))

		seats := []*model.Seat{activeSeat("alice", lastActivity, "vscode/1")}
		prs := []*model.PullRequest{assignedPR("alice")}

		once := uc.CrossReference(ctx, seats, prs)
		twice := uc.CrossReference(ctx, once, prs)

		gt.Value(t, twice[0].PRCount).Equal(1)
	})

	t.Run("lookup failure keeps the login as display value", func(t *testing.T) {
		mock := &mockGitHub{userFails: map[string]bool{"alice": true}}
		uc := usecase.New(mock, "acme", usecase.WithLookupDelay(0))

		seats := []*model.Seat{activeSeat("alice", lastActivity, "vscode/1")}
		prs := []*model.PullRequest{assignedPR("alice")}

		out := uc.CrossReference(ctx, seats, prs)

		gt.Value(t, out[0].PRCount).Equal(1)
		gt.Value(t, out[0].Name).Equal("")
	})

	t.Run("name lookups are bounded", func(t *testing.T) {
		mock := &mockGitHub{}
		uc := usecase.New(mock, "acme", usecase.WithLookupDelay(0))

		var seats []*model.Seat
		var prs []*model.PullRequest
		for i := 0; i < 60; i++ {
			login := fmt.Sprintf("user%02d", i)
			seats = append(seats, activeSeat(login, lastActivity, "vscode/1"))
			prs = append(prs, assignedPR(login))
		}

		out := uc.CrossReference(ctx, seats, prs)

		gt.Array(t, mock.userLookups).Length(50)
		for _, seat := range out {
			gt.Value(t, seat.PRCount).Equal(1)
		}
	})
}
