package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func framed(body string) string {
	return "Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body
}

func TestFrameCodec_WriteThenRead(t *testing.T) {
	var buf bytes.Buffer
	codec := frameCodec{}

	require.NoError(t, codec.WriteObject(&buf, ShowMessageParams{Type: MessageTypeError, Message: "solc error: boom"}))
	assert.True(t, strings.HasPrefix(buf.String(), "Content-Length: "))

	var params ShowMessageParams
	require.NoError(t, codec.ReadObject(bufio.NewReader(&buf), &params))
	assert.Equal(t, "solc error: boom", params.Message)
	assert.Equal(t, MessageTypeError, params.Type)
}

func TestFrameCodec_HeaderNamesAreCaseInsensitive(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"rootUri":"file:///tmp/p"}}`
	stream := "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\n" +
		"content-length: " + strconv.Itoa(len(body)) + "\n\n" + body

	var msg wireMessage
	require.NoError(t, frameCodec{}.ReadObject(bufio.NewReader(strings.NewReader(stream)), &msg))

	assert.Equal(t, MethodInitialize, msg.Method)
	assert.Equal(t, "1", string(msg.ID))
}

func TestFrameCodec_MalformedBodyIsSkipped(t *testing.T) {
	var reported []error
	codec := frameCodec{onMalformed: func(err error) { reported = append(reported, err) }}
	stream := bufio.NewReader(strings.NewReader(
		"Content-Length: 5\r\n\r\n{bad}" + framed(`{"jsonrpc":"2.0","method":"initialized"}`)))

	var msg wireMessage
	require.NoError(t, codec.ReadObject(stream, &msg))
	assert.Equal(t, MethodInitialized, msg.Method)
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], ErrMalformedMessage)

	assert.ErrorIs(t, codec.ReadObject(stream, &msg), io.EOF)
}

func TestFrameCodec_OversizedBodyIsSkipped(t *testing.T) {
	var reported []error
	codec := frameCodec{maxBody: 64, onMalformed: func(err error) { reported = append(reported, err) }}
	large := `{"jsonrpc":"2.0","method":"initialized","params":{"padding":"` + strings.Repeat("x", 100) + `"}}`
	stream := bufio.NewReader(strings.NewReader(framed(large) + framed(`{"jsonrpc":"2.0","method":"exit"}`)))

	var msg wireMessage
	require.NoError(t, codec.ReadObject(stream, &msg))

	assert.Equal(t, MethodExit, msg.Method)
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], ErrMalformedMessage)
	assert.Contains(t, reported[0].Error(), "exceeds 64 bytes")
}

func TestFrameCodec_OversizedTruncatedBodyFails(t *testing.T) {
	codec := frameCodec{maxBody: 8}
	stream := bufio.NewReader(strings.NewReader("Content-Length: 1000000000\r\n\r\n{}"))

	var msg wireMessage
	err := codec.ReadObject(stream, &msg)

	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestFrameCodec_InvalidContentLength(t *testing.T) {
	for _, value := range []string{"abc", "-1", "99999999999999999999"} {
		t.Run(value, func(t *testing.T) {
			stream := bufio.NewReader(strings.NewReader("Content-Length: " + value + "\r\n\r\n{}"))

			var msg wireMessage
			err := frameCodec{}.ReadObject(stream, &msg)

			assert.True(t, errors.Is(err, ErrMalformedMessage), "got %v", err)
		})
	}
}

func TestFrameCodec_EndOfStream(t *testing.T) {
	var msg wireMessage

	err := frameCodec{}.ReadObject(bufio.NewReader(strings.NewReader("")), &msg)
	assert.ErrorIs(t, err, io.EOF)

	err = frameCodec{}.ReadObject(bufio.NewReader(strings.NewReader("Content-Length: 2\r\n")), &msg)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFrameCodec_ReadDoesNotTouchTargetOnMalformedBody(t *testing.T) {
	codec := frameCodec{}
	stream := bufio.NewReader(strings.NewReader(framed(`{"method":1}`)))

	msg := wireMessage{Method: "unchanged"}
	err := codec.ReadObject(stream, &msg)

	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "unchanged", msg.Method)
}

// wireMessage is any JSON-RPC message as seen by the client.
type wireMessage struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *struct {
		Code    int64  `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// readMessages decodes every framed message written to out.
func readMessages(t *testing.T, out *bytes.Buffer) []wireMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(out.Bytes()))
	var messages []wireMessage
	for {
		var msg wireMessage
		err := frameCodec{}.ReadObject(reader, &msg)
		if errors.Is(err, io.EOF) {
			return messages
		}
		require.NoError(t, err)
		messages = append(messages, msg)
	}
}
