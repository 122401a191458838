package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/LegacyCodeHQ/solls/internal/logging"
)

// maxContentLength bounds the body of a single incoming message.
const maxContentLength = 16 << 20

// ServerNotInitialized is the LSP error code for requests sent before initialize.
const ServerNotInitialized = -32002

// ErrMalformedMessage wraps framing and decoding problems of a single message.
var ErrMalformedMessage = errors.New("malformed message")

// frameCodec is the Content-Length framing of the base protocol. Writes use
// jsonrpc2.VSCodeObjectCodec. Reads accept header names in any case and bare
// \n line endings; a body larger than maxBody is skipped without being
// buffered and a body that is not a JSON-RPC message is dropped. Both are
// reported to onMalformed and reading continues with the next message.
type frameCodec struct {
	jsonrpc2.VSCodeObjectCodec
	maxBody     int64
	onMalformed func(error)
}

// ReadObject implements jsonrpc2.ObjectCodec.
func (c frameCodec) ReadObject(stream *bufio.Reader, v interface{}) error {
	limit := c.maxBody
	if limit <= 0 {
		limit = maxContentLength
	}

	for {
		contentLength, err := readHeader(stream)
		if err != nil {
			return err
		}

		if contentLength > limit {
			tooLarge := fmt.Errorf("%w: Content-Length %d exceeds %d bytes", ErrMalformedMessage, contentLength, limit)
			if _, err := io.CopyN(io.Discard, stream, contentLength); err != nil {
				return tooLarge
			}
			c.report(tooLarge)
			continue
		}

		body := make([]byte, contentLength)
		if _, err := io.ReadFull(stream, body); err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}

		// Decode into a fresh value so a rejected body leaves v untouched.
		fresh := reflect.New(reflect.TypeOf(v).Elem())
		if err := json.Unmarshal(body, fresh.Interface()); err != nil {
			c.report(fmt.Errorf("%w: %v", ErrMalformedMessage, err))
			continue
		}
		reflect.ValueOf(v).Elem().Set(fresh.Elem())
		return nil
	}
}

func (c frameCodec) report(err error) {
	if c.onMalformed != nil {
		c.onMalformed(err)
	}
}

// readHeader consumes one header block and returns its Content-Length.
// Blank lines before a header block are skipped.
func readHeader(stream *bufio.Reader) (int64, error) {
	contentLength := int64(-1)
	for {
		line, err := stream.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && (line != "" || contentLength >= 0) {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			if contentLength < 0 {
				continue
			}
			return contentLength, nil
		}

		name, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("%w: invalid Content-Length %q", ErrMalformedMessage, strings.TrimSpace(value))
			}
			contentLength = n
		}
	}
}

// stdio joins the two halves of a process's standard streams.
type stdio struct {
	io.Reader
	io.Writer
}

// Close leaves the underlying streams open; the process owns them.
func (stdio) Close() error { return nil }

// NewStdio returns the stream a server runs on when talking over r and w.
func NewStdio(r io.Reader, w io.Writer) io.ReadWriteCloser {
	return stdio{Reader: r, Writer: w}
}

// protocolLogger routes the connection's own diagnostics into the logger.
type protocolLogger struct {
	logger *logging.Logger
}

func (l protocolLogger) Printf(format string, v ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)), nil)
}
