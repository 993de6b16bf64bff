package model

import "time"

// CountItem is a single group-by bucket (name → count)
type CountItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SeatsStats is the aggregate rollup over one seat fetch cycle.
// Pure derived values; recomputed wholesale on each aggregation pass.
type SeatsStats struct {
	TotalSeats   int `json:"totalSeats"`
	WithActivity int `json:"withActivity"`
	NeverUsed    int `json:"neverUsed"`

	Active24h int `json:"active24h"`
	Active7d  int `json:"active7d"`
	Active30d int `json:"active30d"`

	// AdoptionRate and ActiveRate7d are percentages with one decimal digit
	AdoptionRate float64 `json:"adoptionRate"`
	ActiveRate7d float64 `json:"activeRate7d"`

	ByEditor []CountItem `json:"byEditor"`
	ByPlan   []CountItem `json:"byPlan"`
}

// Effectiveness is a PR outcome breakdown for one agent or repository
type Effectiveness struct {
	Name      string  `json:"name"`
	Total     int     `json:"total"`
	Open      int     `json:"open"`
	Merged    int     `json:"merged"`
	Rejected  int     `json:"rejected"`
	MergeRate float64 `json:"mergeRate"`
}

// TimeBucket counts PRs created within [Start, End)
type TimeBucket struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int       `json:"count"`
}

// PRStats is the aggregate rollup over one PR fetch cycle.
// Invariant: Merged + Rejected == Closed, also after the closed-PR
// fallback heuristic is applied.
type PRStats struct {
	Total    int `json:"total"`
	Open     int `json:"open"`
	Closed   int `json:"closed"`
	Merged   int `json:"merged"`
	Rejected int `json:"rejected"`

	MergeRate     float64 `json:"mergeRate"`
	RejectionRate float64 `json:"rejectionRate"`
	PendingRate   float64 `json:"pendingRate"`

	TopRepositories []CountItem `json:"topRepositories"`
	TopAgents       []CountItem `json:"topAgents"`

	AgentEffectiveness []Effectiveness `json:"agentEffectiveness"`
	RepoEffectiveness  []Effectiveness `json:"repoEffectiveness"`

	Weekly  []TimeBucket `json:"weekly"`
	Monthly []TimeBucket `json:"monthly"`

	TotalComments int     `json:"totalComments"`
	AvgComments   float64 `json:"avgComments"`
}

// LanguageStat is one entry of the languages breakdown
type LanguageStat struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// TimezoneBucket is one coarse-region entry of the timezone-activity
// breakdown, derived from last-activity hour of day
type TimezoneBucket struct {
	Region     string  `json:"region"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}
