package usecase

import (
	"context"

	"github.com/secmon-lab/copilot-dash/pkg/domain/model"
	"github.com/secmon-lab/copilot-dash/pkg/utils/logging"
)

// Name lookups are bounded to avoid a burst of per-user calls on large
// orgs; remaining seats keep their login as display value.
const maxNameLookups = 50

// CrossReference joins PR assignment counts back onto seat records and
// resolves display names for seats that own tracked PRs. It returns new
// seat records; the input is never mutated. The result is idempotent and
// order-independent: PRCount depends only on the given PR list.
func (uc *UseCases) CrossReference(ctx context.Context, seats []*model.Seat, prs []*model.PullRequest) []*model.Seat {
	logger := logging.From(ctx)

	out := make([]*model.Seat, len(seats))
	for i, seat := range seats {
		s := seat.Clone()
		s.PRCount = 0
		if s.IsActive {
			for _, pr := range prs {
				if pr.AssignedTo(s.Login) {
					s.PRCount++
				}
			}
		}
		out[i] = s
	}

	lookups := 0
	for _, seat := range out {
		if seat.PRCount == 0 {
			continue
		}
		if lookups >= maxNameLookups {
			break
		}
		lookups++

		user, err := uc.github.GetUser(ctx, seat.Login.String())
		if err != nil {
			// individual lookup failures stay non-fatal; the login is
			// displayed instead
			logger.Debug("user name lookup failed", "login", seat.Login, "error", err)
		} else if user.Name != "" {
			seat.Name = user.Name
		}

		if !sleep(ctx, uc.lookupDelay) {
			break
		}
	}

	return out
}
