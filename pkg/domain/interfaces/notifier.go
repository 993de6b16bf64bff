package interfaces

import (
	"context"

	"github.com/secmon-lab/copilot-dash/pkg/domain/model"
)

// Notifier fans refresh events out to connected subscribers. The refresh
// orchestrator emits exactly one event per refresh outcome; transport
// specifics (WebSocket, SSE, ...) live behind this interface.
type Notifier interface {
	// NotifyRefreshStarted announces a refresh in progress
	NotifyRefreshStarted(ctx context.Context)

	// NotifyDashboard broadcasts a completed snapshot
	NotifyDashboard(ctx context.Context, data *model.DashboardData)

	// NotifyError announces a failed refresh with a generic code.
	// The previously cached snapshot stays valid.
	NotifyError(ctx context.Context, code string)
}
