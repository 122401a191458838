package watch

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LegacyCodeHQ/solls/diagnostics"
)

type recordingPublisher struct {
	files []string
}

func (r *recordingPublisher) PublishDiagnostics(file string, _ []diagnostics.Diagnostic) {
	r.files = append(r.files, file)
}

func latestSnapshot(t *testing.T, b *broker) diagnosticsSnapshot {
	t.Helper()
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	var snapshot diagnosticsSnapshot
	require.NoError(t, json.Unmarshal([]byte(<-ch), &snapshot))
	return snapshot
}

func TestViewerPublisher_StreamsSortedSnapshot(t *testing.T) {
	next := &recordingPublisher{}
	b := newBroker()
	p := newViewerPublisher(next, b)
	published := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p.now = func() time.Time { return published }
	warning := diagnostics.OnLine("unused variable", 3, 4, 9, diagnostics.SeverityWarning, diagnostics.SourceCompiler)

	p.PublishDiagnostics("/w/src/B.sol", []diagnostics.Diagnostic{warning})
	p.PublishDiagnostics("/w/src/A.sol", []diagnostics.Diagnostic{warning})
	p.PublishDiagnostics("/w/src/C.sol", nil)

	assert.Equal(t, []string{"/w/src/B.sol", "/w/src/A.sol", "/w/src/C.sol"}, next.files)

	snapshot := latestSnapshot(t, b)
	assert.Equal(t, int64(3), snapshot.ID)
	assert.True(t, published.Equal(snapshot.Timestamp))
	require.Len(t, snapshot.Files, 2)
	assert.Equal(t, "/w/src/A.sol", snapshot.Files[0].Path)
	assert.Equal(t, "/w/src/B.sol", snapshot.Files[1].Path)
	assert.Equal(t, []diagnostics.Diagnostic{warning}, snapshot.Files[0].Diagnostics)
}

func TestViewerPublisher_CleanFileIsRemoved(t *testing.T) {
	b := newBroker()
	p := newViewerPublisher(&recordingPublisher{}, b)
	failure := diagnostics.OnLine("boom", 0, 0, 1, diagnostics.SeverityError, diagnostics.SourceCompiler)

	p.PublishDiagnostics("/w/A.sol", []diagnostics.Diagnostic{failure})
	p.PublishDiagnostics("/w/A.sol", []diagnostics.Diagnostic{})

	snapshot := latestSnapshot(t, b)
	assert.Equal(t, int64(2), snapshot.ID)
	assert.Empty(t, snapshot.Files)
}
