package lsp

import (
	"context"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
)

// logQueueSize bounds the lines waiting to be forwarded; later lines are
// dropped while the queue is full.
const logQueueSize = 256

// LogWriter forwards written log lines to the client as window/logMessage.
// Lines are sent from a separate goroutine so logging never waits on the
// connection; lines written while no connection is attached are dropped.
type LogWriter struct {
	mu    sync.Mutex
	lines chan string
	done  chan struct{}
}

// NewLogWriter returns a writer with no connection attached.
func NewLogWriter() *LogWriter {
	return &LogWriter{}
}

// Attach starts forwarding to conn. Attaching nil, or another connection,
// first flushes the lines queued for the previous one.
func (w *LogWriter) Attach(conn *jsonrpc2.Conn) {
	w.mu.Lock()
	lines, done := w.lines, w.done
	w.lines, w.done = nil, nil
	if conn != nil {
		w.lines = make(chan string, logQueueSize)
		w.done = make(chan struct{})
		go forwardLogs(conn, w.lines, w.done)
	}
	w.mu.Unlock()

	if lines != nil {
		close(lines)
		<-done
	}
}

func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lines == nil {
		return len(p), nil
	}
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		select {
		case w.lines <- line:
		default:
		}
	}
	return len(p), nil
}

func forwardLogs(conn *jsonrpc2.Conn, lines <-chan string, done chan<- struct{}) {
	defer close(done)
	for line := range lines {
		// A closed connection only loses the remaining lines.
		_ = conn.Notify(context.Background(), MethodLogMessage, LogMessageParams{Type: MessageTypeLog, Message: line})
	}
}
