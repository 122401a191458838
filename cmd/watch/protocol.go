package watch

import (
	"time"

	"github.com/LegacyCodeHQ/solls/diagnostics"
)

const (
	routeIndex  = "/"
	routeEvents = "/events"
)

const sseEventDiagnostics = "diagnostics"

// diagnosticsSnapshot is the workspace state after one publish. Files with
// no diagnostics are left out.
type diagnosticsSnapshot struct {
	ID        int64             `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Files     []fileDiagnostics `json:"files"`
}

type fileDiagnostics struct {
	Path        string                   `json:"path"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}
