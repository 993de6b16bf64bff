package model

// TeamAdoption is one simulated team-level adoption figure for the
// executive summary block
type TeamAdoption struct {
	Team string  `json:"team"`
	Rate float64 `json:"rate"`
}

// TrendPoint is one point of the simulated historical adoption curve
type TrendPoint struct {
	Label string  `json:"label"`
	Rate  float64 `json:"rate"`
}

// ExecutiveSummary bundles the simulated executive-view figures.
// Nothing in here is measured data; see usecase.SimulatedMetrics.
type ExecutiveSummary struct {
	TeamAdoption  []TeamAdoption `json:"teamAdoption"`
	AdoptionCurve []TrendPoint   `json:"adoptionCurve"`
}

// Metadata describes one dashboard snapshot
type Metadata struct {
	LastUpdated string `json:"lastUpdated"`
	Live        bool   `json:"live"`
	Source      string `json:"source"`
}

// DashboardData is the root aggregate: the single unit cached under one
// key and broadcast wholesale on refresh.
type DashboardData struct {
	SeatsStats *SeatsStats `json:"seatsStats"`
	Seats      []*Seat     `json:"seats"`

	PRStats      *PRStats       `json:"prStats"`
	PullRequests []*PullRequest `json:"pullRequests"`

	Languages        []LanguageStat    `json:"languages"`
	TimezoneActivity []TimezoneBucket  `json:"timezoneActivity"`
	Executive        *ExecutiveSummary `json:"executive,omitempty"`

	Metadata Metadata `json:"metadata"`
}

// KPISummary is the small key-figure view derived from a full snapshot,
// cached under its own key for lightweight consumers.
type KPISummary struct {
	TotalSeats   int     `json:"totalSeats"`
	WithActivity int     `json:"withActivity"`
	AdoptionRate float64 `json:"adoptionRate"`
	TotalPRs     int     `json:"totalPrs"`
	MergedPRs    int     `json:"mergedPrs"`
	MergeRate    float64 `json:"mergeRate"`
	LastUpdated  string  `json:"lastUpdated"`
}

// KPIs projects the key figures out of a full snapshot
func (d *DashboardData) KPIs() *KPISummary {
	kpi := &KPISummary{
		LastUpdated: d.Metadata.LastUpdated,
	}
	if d.SeatsStats != nil {
		kpi.TotalSeats = d.SeatsStats.TotalSeats
		kpi.WithActivity = d.SeatsStats.WithActivity
		kpi.AdoptionRate = d.SeatsStats.AdoptionRate
	}
	if d.PRStats != nil {
		kpi.TotalPRs = d.PRStats.Total
		kpi.MergedPRs = d.PRStats.Merged
		kpi.MergeRate = d.PRStats.MergeRate
	}
	return kpi
}

// HasSignificantChanges compares this snapshot against a previous one.
// Only four figures count: total PRs, merged PRs, total seats and
// seats-with-activity. Any other drift (editor distribution, buckets,
// rates) is deliberately ignored so broadcasts stay quiet.
func (d *DashboardData) HasSignificantChanges(prev *DashboardData) bool {
	if prev == nil {
		return true
	}

	oldPR, newPR := prev.PRStats, d.PRStats
	if (oldPR == nil) != (newPR == nil) {
		return true
	}
	if oldPR != nil && (oldPR.Total != newPR.Total || oldPR.Merged != newPR.Merged) {
		return true
	}

	oldSeats, newSeats := prev.SeatsStats, d.SeatsStats
	if (oldSeats == nil) != (newSeats == nil) {
		return true
	}
	if oldSeats != nil && (oldSeats.TotalSeats != newSeats.TotalSeats || oldSeats.WithActivity != newSeats.WithActivity) {
		return true
	}

	return false
}
