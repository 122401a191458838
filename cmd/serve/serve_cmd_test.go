package serve

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func frame(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

func TestServe_ShutdownThenExit(t *testing.T) {
	input := frame(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`) +
		frame(`{"jsonrpc":"2.0","id":2,"method":"shutdown"}`) +
		frame(`{"jsonrpc":"2.0","method":"exit"}`)

	cmd := NewCommand()
	cmd.SetIn(strings.NewReader(input))
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--stdio"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("cmd.Execute() error = %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, `"id":1`) || !strings.Contains(output, `"textDocumentSync"`) {
		t.Fatalf("expected initialize result, got:\n%s", output)
	}
	if !strings.Contains(output, `"id":2`) {
		t.Fatalf("expected shutdown reply, got:\n%s", output)
	}
}

func TestServe_ExitWithoutShutdownFails(t *testing.T) {
	cmd := NewCommand()
	cmd.SetIn(strings.NewReader(frame(`{"jsonrpc":"2.0","method":"exit"}`)))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected an error when the client exits without shutdown")
	}
	if !strings.Contains(err.Error(), "exit code 1") {
		t.Fatalf("unexpected error: %v", err)
	}
}
