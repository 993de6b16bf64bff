package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/copilot-dash/pkg/domain/model"
)

// FetchDashboardData runs the full pipeline: fetch seats and PRs
// concurrently, aggregate, cross-reference, and assemble the root
// snapshot. Fetch errors degrade to partial data inside the fetchers;
// an error here means the pipeline itself could not complete.
func (uc *UseCases) FetchDashboardData(ctx context.Context) (*model.DashboardData, error) {
	var (
		seatList *model.SeatList
		prs      []*model.PullRequest
	)

	// no ordering dependency between the two fetchers
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		seatList = uc.FetchSeats(gctx)
		return nil
	})
	g.Go(func() error {
		prs = uc.FetchPullRequests(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, goerr.Wrap(err, "dashboard fetch failed")
	}
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "dashboard fetch cancelled")
	}

	now := uc.now()
	seatsStats := CalculateSeatsStats(seatList.Seats, seatList.TotalSeats, now)

	prStats := CalculatePRStats(prs, now)
	uc.applyAgentNames(prStats)

	seats := uc.CrossReference(ctx, seatList.Seats, prs)

	return &model.DashboardData{
		SeatsStats:       seatsStats,
		Seats:            seats,
		PRStats:          prStats,
		PullRequests:     prs,
		Languages:        uc.sim.Languages(),
		TimezoneActivity: CalculateTimezoneActivity(seats),
		Executive:        uc.sim.ExecutiveSummary(seatsStats.AdoptionRate),
		Metadata: model.Metadata{
			LastUpdated: now.Format("2006-01-02 15:04:05 MST"),
			Live:        true,
			Source:      uc.dataSource,
		},
	}, nil
}

// applyAgentNames swaps raw agent tags for configured display names in
// the agent breakdowns
func (uc *UseCases) applyAgentNames(stats *model.PRStats) {
	if len(uc.agentNames) == 0 {
		return
	}

	for i, item := range stats.TopAgents {
		if name, ok := uc.agentNames[item.Name]; ok {
			stats.TopAgents[i].Name = name
		}
	}
	for i, eff := range stats.AgentEffectiveness {
		if name, ok := uc.agentNames[eff.Name]; ok {
			stats.AgentEffectiveness[i].Name = name
		}
	}
}
