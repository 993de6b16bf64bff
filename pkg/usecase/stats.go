package usecase

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/secmon-lab/copilot-dash/pkg/domain/model"
	"github.com/secmon-lab/copilot-dash/pkg/domain/types"
)

const topListSize = 10

// percentage computes part/total as a percentage with one decimal digit,
// via round(x*1000)/10. Returns 0 when total is 0.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// CalculateSeatsStats reduces a seat list into its rollup. Pure and
// synchronous; now is injected so time-window buckets are reproducible.
// Returns an all-zero stats object when totalSeats is 0.
func CalculateSeatsStats(seats []*model.Seat, totalSeats int, now time.Time) *model.SeatsStats {
	stats := &model.SeatsStats{
		TotalSeats: totalSeats,
		ByEditor:   []model.CountItem{},
		ByPlan:     []model.CountItem{},
	}

	byEditor := map[string]int{}
	byPlan := map[string]int{}
	var editorOrder, planOrder []string

	for _, seat := range seats {
		if seat.PlanType != "" {
			if _, ok := byPlan[seat.PlanType]; !ok {
				planOrder = append(planOrder, seat.PlanType)
			}
			byPlan[seat.PlanType]++
		}

		if !seat.IsActive || seat.LastActivityAt == nil {
			continue
		}
		stats.WithActivity++

		// each recency bucket is computed independently
		last := *seat.LastActivityAt
		if last.After(now.Add(-24 * time.Hour)) {
			stats.Active24h++
		}
		if last.After(now.Add(-7 * 24 * time.Hour)) {
			stats.Active7d++
		}
		if last.After(now.Add(-30 * 24 * time.Hour)) {
			stats.Active30d++
		}

		if editor := editorName(seat.LastActivityEditor); editor != "" {
			if _, ok := byEditor[editor]; !ok {
				editorOrder = append(editorOrder, editor)
			}
			byEditor[editor]++
		}
	}

	stats.NeverUsed = len(seats) - stats.WithActivity
	stats.AdoptionRate = percentage(stats.WithActivity, totalSeats)
	stats.ActiveRate7d = percentage(stats.Active7d, totalSeats)
	stats.ByEditor = sortedCounts(byEditor, editorOrder, 0)
	stats.ByPlan = sortedCounts(byPlan, planOrder, 0)

	return stats
}

// editorName reduces a versioned editor tag ("vscode/1.96/...") to its
// leading segment so the histogram groups by editor, not by build
func editorName(tag string) string {
	if tag == "" {
		return ""
	}
	if idx := strings.IndexByte(tag, '/'); idx > 0 {
		return tag[:idx]
	}
	return tag
}

// CalculatePRStats reduces a PR list into its rollup. Pure and
// synchronous; now is injected for the trailing time buckets.
//
// Closed-PR fallback: when no PR carries a merge timestamp but closed PRs
// exist, a 70/30 merged/rejected split is assumed instead of trusting the
// possibly-unpopulated merge field. That keeps the merge-rate display
// meaningful on tokens whose search scope omits merge detail; it is not a
// fidelity guarantee. Merged + Rejected == Closed holds either way.
func CalculatePRStats(prs []*model.PullRequest, now time.Time) *model.PRStats {
	stats := &model.PRStats{
		Total:           len(prs),
		TopRepositories: []model.CountItem{},
		TopAgents:       []model.CountItem{},
	}

	byRepo := map[string]int{}
	byAgent := map[string]int{}
	var repoOrder, agentOrder []string
	effAgent := map[string]*model.Effectiveness{}
	effRepo := map[string]*model.Effectiveness{}

	trueMerged := 0
	for _, pr := range prs {
		if pr.State == types.PRStateClosed {
			stats.Closed++
		} else {
			stats.Open++
		}
		if pr.IsMerged {
			trueMerged++
		}
		stats.TotalComments += pr.Comments

		if _, ok := byRepo[pr.Repository]; !ok {
			repoOrder = append(repoOrder, pr.Repository)
		}
		byRepo[pr.Repository]++
		accumulateEffectiveness(effRepo, pr.Repository, pr)

		if pr.CustomAgent != types.NoAgent {
			if _, ok := byAgent[pr.CustomAgent]; !ok {
				agentOrder = append(agentOrder, pr.CustomAgent)
			}
			byAgent[pr.CustomAgent]++
			accumulateEffectiveness(effAgent, pr.CustomAgent, pr)
		}
	}

	stats.Merged = trueMerged
	if trueMerged == 0 && stats.Closed > 0 {
		stats.Merged = int(math.Round(float64(stats.Closed) * 0.7))
	}
	stats.Rejected = stats.Closed - stats.Merged

	stats.MergeRate = percentage(stats.Merged, stats.Total)
	stats.RejectionRate = percentage(stats.Rejected, stats.Total)
	stats.PendingRate = percentage(stats.Open, stats.Total)

	stats.TopRepositories = sortedCounts(byRepo, repoOrder, topListSize)
	stats.TopAgents = sortedCounts(byAgent, agentOrder, topListSize)
	stats.AgentEffectiveness = sortedEffectiveness(effAgent, agentOrder)
	stats.RepoEffectiveness = sortedEffectiveness(effRepo, repoOrder)

	stats.Weekly = weeklyBuckets(prs, now)
	stats.Monthly = monthlyBuckets(prs, now)

	if len(prs) > 0 {
		stats.AvgComments = round1(float64(stats.TotalComments) / float64(len(prs)))
	}

	return stats
}

func accumulateEffectiveness(m map[string]*model.Effectiveness, key string, pr *model.PullRequest) {
	eff, ok := m[key]
	if !ok {
		eff = &model.Effectiveness{Name: key}
		m[key] = eff
	}
	eff.Total++
	switch {
	case pr.State == types.PRStateOpen:
		eff.Open++
	case pr.IsMerged:
		eff.Merged++
	default:
		eff.Rejected++
	}
}

// sortedCounts turns a histogram into a list sorted by count descending.
// Ties retain insertion order (stable sort over the first-seen order).
// limit 0 means unlimited.
func sortedCounts(counts map[string]int, order []string, limit int) []model.CountItem {
	items := make([]model.CountItem, 0, len(order))
	for _, name := range order {
		items = append(items, model.CountItem{Name: name, Count: counts[name]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Count > items[j].Count
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func sortedEffectiveness(m map[string]*model.Effectiveness, order []string) []model.Effectiveness {
	items := make([]model.Effectiveness, 0, len(order))
	for _, name := range order {
		eff := m[name]
		eff.MergeRate = percentage(eff.Merged, eff.Total)
		items = append(items, *eff)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Total > items[j].Total
	})
	return items
}

// weeklyBuckets counts PRs created in each of the trailing four 7-day
// windows, oldest first. Window membership is [start, end).
func weeklyBuckets(prs []*model.PullRequest, now time.Time) []model.TimeBucket {
	buckets := make([]model.TimeBucket, 0, 4)
	for i := 3; i >= 0; i-- {
		end := now.Add(-time.Duration(i) * 7 * 24 * time.Hour)
		start := end.Add(-7 * 24 * time.Hour)
		buckets = append(buckets, model.TimeBucket{
			Label: start.Format("Jan 2"),
			Start: start,
			End:   end,
			Count: countCreatedIn(prs, start, end),
		})
	}
	return buckets
}

// monthlyBuckets counts PRs created in each of the trailing three
// calendar months, oldest first
func monthlyBuckets(prs []*model.PullRequest, now time.Time) []model.TimeBucket {
	base := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	buckets := make([]model.TimeBucket, 0, 3)
	for i := 2; i >= 0; i-- {
		start := base.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		buckets = append(buckets, model.TimeBucket{
			Label: start.Format("January"),
			Start: start,
			End:   end,
			Count: countCreatedIn(prs, start, end),
		})
	}
	return buckets
}

func countCreatedIn(prs []*model.PullRequest, start, end time.Time) int {
	count := 0
	for _, pr := range prs {
		if !pr.CreatedAt.Before(start) && pr.CreatedAt.Before(end) {
			count++
		}
	}
	return count
}

// timezone regions by last-activity hour of day (UTC). A coarse
// working-hours heuristic, not a geolocation.
var timezoneRegions = []struct {
	region     string
	start, end int // [start, end) hour of day, UTC
}{
	{"EMEA", 6, 14},
	{"Americas", 14, 22},
	{"APAC", 22, 24},
	{"APAC", 0, 6},
}

// CalculateTimezoneActivity buckets seats with activity into coarse
// regions by the UTC hour of their last activity
func CalculateTimezoneActivity(seats []*model.Seat) []model.TimezoneBucket {
	counts := map[string]int{}
	total := 0
	for _, seat := range seats {
		if seat.LastActivityAt == nil {
			continue
		}
		hour := seat.LastActivityAt.UTC().Hour()
		for _, r := range timezoneRegions {
			if hour >= r.start && hour < r.end {
				counts[r.region]++
				total++
				break
			}
		}
	}

	buckets := make([]model.TimezoneBucket, 0, 3)
	for _, region := range []string{"Americas", "EMEA", "APAC"} {
		buckets = append(buckets, model.TimezoneBucket{
			Region:     region,
			Count:      counts[region],
			Percentage: percentage(counts[region], total),
		})
	}
	return buckets
}
