package cli

import (
	"github.com/kbdesk/kbdesk/internal/core"
	"github.com/kbdesk/kbdesk/internal/observability"
)

// Service instances, set during app initialization in app.go.
var (
	Engine      *core.Engine
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
