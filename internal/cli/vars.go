package cli

import "github.com/valter-silva-au/tasklists/internal/observability"

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
