package usecase

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/secmon-lab/copilot-dash/pkg/domain/model"
)

// SimulatedMetrics generates every fabricated figure the dashboard shows:
// per-seat agent-usage counts, the languages breakdown, team adoption and
// the historical adoption curve. None of this is measured data. It is kept
// in one place so it can be swapped for real metrics without touching the
// aggregation core.
type SimulatedMetrics struct {
	rng *rand.Rand
	now func() time.Time
}

// NewSimulatedMetrics creates a generator seeded deterministically
func NewSimulatedMetrics(seed int64) *SimulatedMetrics {
	return &SimulatedMetrics{
		// #nosec G404 -- demo figures, not security material
		rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1)),
		now: time.Now,
	}
}

// WithNow replaces the time source, for tests
func (s *SimulatedMetrics) WithNow(now func() time.Time) *SimulatedMetrics {
	s.now = now
	return s
}

// AgentUsage fabricates a usage count from activity recency: four tiers
// keyed on days since last activity. Callers must not treat the result as
// ground truth.
func (s *SimulatedMetrics) AgentUsage(lastActivity *time.Time) int {
	if lastActivity == nil {
		return 0
	}

	days := s.now().Sub(*lastActivity).Hours() / 24
	switch {
	case days <= 1:
		return 20 + s.rng.IntN(31) // [20, 50]
	case days <= 7:
		return 5 + s.rng.IntN(16) // [5, 20]
	case days <= 30:
		return 1 + s.rng.IntN(5) // [1, 5]
	default:
		return s.rng.IntN(2) // [0, 1]
	}
}

// Languages returns a fixed plausible language distribution for the demo
// breakdown panel
func (s *SimulatedMetrics) Languages() []model.LanguageStat {
	return []model.LanguageStat{
		{Name: "TypeScript", Percentage: 31.4},
		{Name: "Python", Percentage: 23.8},
		{Name: "Go", Percentage: 17.2},
		{Name: "Java", Percentage: 11.6},
		{Name: "Kotlin", Percentage: 7.9},
		{Name: "Other", Percentage: 8.1},
	}
}

// ExecutiveSummary fabricates the executive-view figures around the real
// adoption rate: per-team adoption jittered around it and a six-point
// curve rising toward it.
func (s *SimulatedMetrics) ExecutiveSummary(adoptionRate float64) *model.ExecutiveSummary {
	teams := []string{"Platform", "Payments", "Mobile", "Data", "SRE"}

	summary := &model.ExecutiveSummary{
		TeamAdoption: make([]model.TeamAdoption, 0, len(teams)),
	}
	for _, team := range teams {
		jitter := (s.rng.Float64() - 0.5) * 20
		summary.TeamAdoption = append(summary.TeamAdoption, model.TeamAdoption{
			Team: team,
			Rate: clampRate(adoptionRate + jitter),
		})
	}

	now := s.now()
	for i := 5; i >= 0; i-- {
		month := now.AddDate(0, -i, 0)
		progress := float64(6-i) / 6
		jitter := s.rng.Float64() * 5
		summary.AdoptionCurve = append(summary.AdoptionCurve, model.TrendPoint{
			Label: month.Format("Jan"),
			Rate:  clampRate(adoptionRate*progress + jitter),
		})
	}

	return summary
}

func clampRate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return math.Round(v*10) / 10
}
