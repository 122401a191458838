package watch

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/LegacyCodeHQ/solls/diagnostics"
	"github.com/LegacyCodeHQ/solls/validation"
)

// viewerPublisher forwards diagnostics to next and streams the resulting
// workspace state to browser clients through the broker.
type viewerPublisher struct {
	next   validation.Publisher
	broker *broker
	now    func() time.Time

	mu    sync.Mutex
	files map[string][]diagnostics.Diagnostic
	seq   int64
}

func newViewerPublisher(next validation.Publisher, b *broker) *viewerPublisher {
	return &viewerPublisher{
		next:   next,
		broker: b,
		now:    time.Now,
		files:  make(map[string][]diagnostics.Diagnostic),
	}
}

// PublishDiagnostics implements validation.Publisher.
func (p *viewerPublisher) PublishDiagnostics(file string, diags []diagnostics.Diagnostic) {
	p.next.PublishDiagnostics(file, diags)

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(diags) == 0 {
		delete(p.files, file)
	} else {
		p.files[file] = diags
	}

	p.seq++
	data, err := json.Marshal(p.snapshot())
	if err != nil {
		return
	}
	p.broker.publish(string(data))
}

func (p *viewerPublisher) snapshot() diagnosticsSnapshot {
	paths := make([]string, 0, len(p.files))
	for path := range p.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	files := make([]fileDiagnostics, 0, len(paths))
	for _, path := range paths {
		files = append(files, fileDiagnostics{Path: path, Diagnostics: p.files[path]})
	}
	return diagnosticsSnapshot{ID: p.seq, Timestamp: p.now().UTC(), Files: files}
}
