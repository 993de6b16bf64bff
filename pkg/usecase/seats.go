package usecase

import (
	"context"

	"github.com/secmon-lab/copilot-dash/pkg/domain/model"
	"github.com/secmon-lab/copilot-dash/pkg/domain/types"
	"github.com/secmon-lab/copilot-dash/pkg/service/github"
	"github.com/secmon-lab/copilot-dash/pkg/utils/logging"
)

const seatsPageSize = 100

// FetchSeats pages through the Copilot seats billing endpoint and returns
// normalized seat records. Pagination stops when the accumulated count
// reaches the server-reported total or a short page is returned.
//
// Failure policy: a fetch error on any page aborts pagination and the
// accumulated partial result is returned; the dashboard proceeds with
// partial data rather than failing the whole load.
func (uc *UseCases) FetchSeats(ctx context.Context) *model.SeatList {
	logger := logging.From(ctx)
	list := &model.SeatList{}

	for page := 1; ; page++ {
		resp, err := uc.github.CopilotSeats(ctx, uc.org, page, seatsPageSize)
		if err != nil {
			logger.Warn("seat fetch aborted, continuing with partial data",
				"page", page,
				"accumulated", len(list.Seats),
				"error", err)
			break
		}

		list.TotalSeats = resp.TotalSeats
		for _, raw := range resp.Seats {
			list.Seats = append(list.Seats, uc.convertSeat(raw))
		}

		if len(resp.Seats) < seatsPageSize {
			break
		}
		if list.TotalSeats > 0 && len(list.Seats) >= list.TotalSeats {
			break
		}

		if !sleep(ctx, uc.pageDelay) {
			break
		}
	}

	logger.Debug("fetched Copilot seats",
		"total", list.TotalSeats,
		"fetched", len(list.Seats))

	return list
}

func (uc *UseCases) convertSeat(raw github.Seat) *model.Seat {
	plan := raw.PlanType
	if plan == "" {
		plan = "unknown"
	}

	return &model.Seat{
		Login:               types.Login(raw.Assignee.Login),
		Name:                raw.Assignee.Name,
		Email:               raw.Assignee.Email,
		AvatarURL:           raw.Assignee.AvatarURL,
		PlanType:            plan,
		CreatedAt:           raw.CreatedAt,
		LastAuthenticatedAt: raw.LastAuthenticatedAt,
		LastActivityAt:      raw.LastActivityAt,
		LastActivityEditor:  raw.LastActivityEditor,
		IsActive:            raw.LastActivityAt != nil,
		AgentUsageCount:     uc.sim.AgentUsage(raw.LastActivityAt),
	}
}
