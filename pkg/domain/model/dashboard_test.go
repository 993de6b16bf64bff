package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/copilot-dash/pkg/domain/model"
)

func snapshot() *model.DashboardData {
	return &model.DashboardData{
		SeatsStats: &model.SeatsStats{
			TotalSeats:   30,
			WithActivity: 20,
			AdoptionRate: 66.7,
			ByEditor: []model.CountItem{
				{Name: "vscode", Count: 15},
				{Name: "jetbrains", Count: 5},
			},
		},
		PRStats: &model.PRStats{
			Total:     10,
			Merged:    6,
			MergeRate: 60.0,
		},
		Metadata: model.Metadata{LastUpdated: "2025-06-01 12:00:00 UTC"},
	}
}

func TestHasSignificantChanges(t *testing.T) {
	t.Run("nil previous is always significant", func(t *testing.T) {
		gt.Bool(t, snapshot().HasSignificantChanges(nil)).True()
	})

	t.Run("PR total change is significant", func(t *testing.T) {
		prev := snapshot()
		next := snapshot()
		next.PRStats.Total = 11
		gt.Bool(t, next.HasSignificantChanges(prev)).True()
	})

	t.Run("merged change is significant", func(t *testing.T) {
		prev := snapshot()
		next := snapshot()
		next.PRStats.Merged = 7
		gt.Bool(t, next.HasSignificantChanges(prev)).True()
	})

	t.Run("seat total change is significant", func(t *testing.T) {
		prev := snapshot()
		next := snapshot()
		next.SeatsStats.TotalSeats = 31
		gt.Bool(t, next.HasSignificantChanges(prev)).True()
	})

	t.Run("with-activity change is significant", func(t *testing.T) {
		prev := snapshot()
		next := snapshot()
		next.SeatsStats.WithActivity = 21
		gt.Bool(t, next.HasSignificantChanges(prev)).True()
	})

	t.Run("editor distribution drift is not significant", func(t *testing.T) {
		prev := snapshot()
		next := snapshot()
		next.SeatsStats.ByEditor = []model.CountItem{
			{Name: "vscode", Count: 10},
			{Name: "jetbrains", Count: 10},
		}
		gt.Bool(t, next.HasSignificantChanges(prev)).False()
	})

	t.Run("identical snapshots are not significant", func(t *testing.T) {
		gt.Bool(t, snapshot().HasSignificantChanges(snapshot())).False()
	})
}

func TestKPIs(t *testing.T) {
	kpis := snapshot().KPIs()

	gt.Value(t, kpis.TotalSeats).Equal(30)
	gt.Value(t, kpis.WithActivity).Equal(20)
	gt.Value(t, kpis.AdoptionRate).Equal(66.7)
	gt.Value(t, kpis.TotalPRs).Equal(10)
	gt.Value(t, kpis.MergedPRs).Equal(6)
	gt.Value(t, kpis.MergeRate).Equal(60.0)
	gt.Value(t, kpis.LastUpdated).Equal("2025-06-01 12:00:00 UTC")
}
