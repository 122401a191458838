// Package lsp serves validation results to an editor over the Language
// Server Protocol on stdio.
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/LegacyCodeHQ/solls/checkers/solc"
	"github.com/LegacyCodeHQ/solls/checkers/solium"
	"github.com/LegacyCodeHQ/solls/config"
	"github.com/LegacyCodeHQ/solls/diagnostics"
	"github.com/LegacyCodeHQ/solls/internal/app"
	"github.com/LegacyCodeHQ/solls/internal/logging"
	"github.com/LegacyCodeHQ/solls/source"
	"github.com/LegacyCodeHQ/solls/validation"
)

// Options configure a Server.
type Options struct {
	Logger     *logging.Logger
	ConfigFile string
	Version    string

	// NewCompiler and NewLinters build the checker adapters for the
	// current settings. They default to the executable-backed adapters.
	NewCompiler func(root string, settings config.Settings) solc.Compiler
	NewLinters  func(root string, settings config.Settings) solium.Provider
	Now         func() time.Time

	// LogWriter, when set, is attached to the connection so log lines are
	// mirrored to the client.
	LogWriter *LogWriter
}

// Server dispatches editor messages to the validation orchestrator. Messages
// are handled one at a time, in arrival order.
type Server struct {
	opts   Options
	logger *logging.Logger

	overlay      *source.Overlay
	docs         *Documents
	loader       *config.Loader
	orchestrator *validation.Orchestrator
	root         string

	mu                sync.Mutex
	conn              *jsonrpc2.Conn
	shutdownRequested bool
	exited            bool
	done              chan struct{}
}

// NewServer returns a server ready to Run.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.NewCompiler == nil {
		opts.NewCompiler = app.NewCompiler
	}
	if opts.NewLinters == nil {
		opts.NewLinters = app.NewLinters
	}

	overlay := source.NewOverlay(nil)
	return &Server{
		opts:    opts,
		logger:  opts.Logger,
		overlay: overlay,
		docs:    NewDocuments(overlay),
		done:    make(chan struct{}),
	}
}

// Run serves the client on stream until it sends exit, the stream ends or
// ctx is cancelled.
func (s *Server) Run(ctx context.Context, stream io.ReadWriteCloser) error {
	codec := frameCodec{
		maxBody: maxContentLength,
		onMalformed: func(err error) {
			s.logger.Warn("dropping malformed message", logging.Fields{"error": err.Error()})
		},
	}
	conn := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(stream, codec),
		jsonrpc2.HandlerWithError(s.handle),
		jsonrpc2.SetLogger(protocolLogger{logger: s.logger}))
	defer conn.Close()

	if s.opts.LogWriter != nil {
		s.opts.LogWriter.Attach(conn)
		defer s.opts.LogWriter.Attach(nil)
	}

	select {
	case <-s.done:
		return nil
	case <-conn.DisconnectNotify():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExitCode is 0 when the client asked for shutdown before exiting.
func (s *Server) ExitCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdownRequested {
		return 0
	}
	return 1
}

// PublishDiagnostics implements validation.Publisher.
func (s *Server) PublishDiagnostics(uri string, diags []diagnostics.Diagnostic) {
	if diags == nil {
		diags = []diagnostics.Diagnostic{}
	}
	s.notify(MethodPublishDiagnostics, PublishDiagnosticsParams{URI: uri, Diagnostics: diags})
}

// ShowError implements validation.Notifier.
func (s *Server) ShowError(message string) {
	s.notify(MethodShowMessage, ShowMessageParams{Type: MessageTypeError, Message: message})
}

func (s *Server) notify(method string, params interface{}) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	if err := conn.Notify(context.Background(), method, params); err != nil {
		s.logger.Error("failed to send notification", logging.Fields{"method": method, "error": err.Error()})
	}
}

// handle answers one message. A non-nil result or error is sent back for
// requests; notifications get no response.
func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	s.mu.Lock()
	s.conn = conn
	exited := s.exited
	s.mu.Unlock()
	if exited {
		return nil, nil
	}

	if s.orchestrator == nil && req.Method != MethodInitialize && req.Method != MethodExit {
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: ServerNotInitialized, Message: "server not initialized"}
	}

	var result interface{}
	var err error
	switch req.Method {
	case MethodInitialize:
		result, err = s.initialize(req)
	case MethodInitialized:
		s.logger.Info("client initialized", nil)
	case MethodShutdown:
		s.mu.Lock()
		s.shutdownRequested = true
		s.mu.Unlock()
	case MethodExit:
		s.exit()
	case MethodDidOpen:
		err = s.didOpen(ctx, req)
	case MethodDidChange:
		err = s.didChange(ctx, req)
	case MethodDidSave:
		err = s.didSave(ctx, req)
	case MethodDidClose:
		err = s.didClose(req)
	case MethodDidChangeConfiguration:
		err = s.didChangeConfiguration(ctx, req)
	case MethodDidChangeWatchedFiles:
		err = s.didChangeWatchedFiles(ctx, req)
	default:
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not found: " + req.Method}
	}

	if err != nil {
		s.logger.Warn("failed to handle message", logging.Fields{"method": req.Method, "error": err.Error()})
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return result, nil
}

func (s *Server) exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exited {
		s.exited = true
		close(s.done)
	}
}

// decodeParams unmarshals the params of req into v.
func decodeParams(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return fmt.Errorf("missing params for %s", req.Method)
	}
	return json.Unmarshal(*req.Params, v)
}

func (s *Server) initialize(req *jsonrpc2.Request) (interface{}, error) {
	var params InitializeParams
	if err := decodeParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid initialize params: %w", err)
	}

	switch {
	case params.RootURI != "":
		root, err := URIToPath(params.RootURI)
		if err != nil {
			return nil, err
		}
		s.root = root
	case params.RootPath != "":
		s.root = params.RootPath
	}

	loader, err := config.NewLoader(s.root, s.opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	s.loader = loader
	if solidity := solidityObject(params.InitializationOptions); solidity != nil {
		if err := loader.MergeClientSettings(solidity); err != nil {
			return nil, err
		}
	}
	cfg, err := loader.Load()
	if err != nil {
		s.ShowError("solls configuration error: " + err.Error())
		cfg = config.Config{}
	}

	s.orchestrator = validation.New(validation.Options{
		WorkspaceRoot: s.root,
		Settings:      cfg.Solidity,
		Compiler:      s.opts.NewCompiler(s.root, cfg.Solidity),
		Linters:       s.opts.NewLinters(s.root, cfg.Solidity),
		ContentReader: s.overlay.Reader(),
		Publisher:     s,
		Notifier:      s,
		Logger:        s.logger,
		Now:           s.opts.Now,
	})
	s.logSettings(cfg.Solidity)

	return InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
				Save:      SaveOptions{IncludeText: true},
			},
		},
		ServerInfo: ServerInfo{Name: "solls", Version: s.opts.Version},
	}, nil
}

func (s *Server) logSettings(settings config.Settings) {
	fields := logging.Fields{"root": s.root, "compiler": settings.CompilerPath}
	if file := s.loader.ConfigFileUsed(); file != "" {
		fields["config"] = file
	}
	if settings.RemoteCompilerVersion != "" {
		fields["remoteCompilerVersion"] = settings.RemoteCompilerVersion
	}
	s.logger.Info("settings loaded", fields)
}

func (s *Server) didOpen(ctx context.Context, req *jsonrpc2.Request) error {
	var params DidOpenTextDocumentParams
	if err := decodeParams(req, &params); err != nil {
		return err
	}
	doc, err := s.docs.Open(params.TextDocument.URI, params.TextDocument.Text)
	if err != nil {
		return err
	}
	s.orchestrator.Validate(ctx, validation.TriggerOpen, doc)
	return nil
}

func (s *Server) didChange(ctx context.Context, req *jsonrpc2.Request) error {
	var params DidChangeTextDocumentParams
	if err := decodeParams(req, &params); err != nil {
		return err
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	doc, ok := s.docs.Update(params.TextDocument.URI, text)
	if !ok {
		return fmt.Errorf("document not open: %s", params.TextDocument.URI)
	}
	s.orchestrator.Validate(ctx, validation.TriggerChange, doc)
	return nil
}

func (s *Server) didSave(ctx context.Context, req *jsonrpc2.Request) error {
	var params DidSaveTextDocumentParams
	if err := decodeParams(req, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI

	var doc validation.Document
	var ok bool
	if params.Text != nil {
		doc, ok = s.docs.Update(uri, *params.Text)
	} else {
		doc, ok = s.docs.Get(uri)
	}
	if !ok {
		return fmt.Errorf("document not open: %s", uri)
	}
	s.orchestrator.Validate(ctx, validation.TriggerSave, doc)
	return nil
}

func (s *Server) didClose(req *jsonrpc2.Request) error {
	var params DidCloseTextDocumentParams
	if err := decodeParams(req, &params); err != nil {
		return err
	}
	s.docs.Close(params.TextDocument.URI)
	s.orchestrator.Close(params.TextDocument.URI)
	return nil
}

func (s *Server) didChangeConfiguration(ctx context.Context, req *jsonrpc2.Request) error {
	var params DidChangeConfigurationParams
	if err := decodeParams(req, &params); err != nil {
		return err
	}

	if solidity := solidityObject(params.Settings); solidity != nil {
		if err := s.loader.MergeClientSettings(solidity); err != nil {
			return err
		}
	}
	cfg, err := s.loader.Load()
	if err != nil {
		s.ShowError("solls configuration error: " + err.Error())
		return err
	}

	s.orchestrator.SetSettings(cfg.Solidity)
	s.orchestrator.SetCheckers(s.opts.NewCompiler(s.root, cfg.Solidity), s.opts.NewLinters(s.root, cfg.Solidity))
	s.logSettings(cfg.Solidity)
	s.orchestrator.ValidateAll(ctx, validation.TriggerConfigChange, s.docs.All())
	return nil
}

func (s *Server) didChangeWatchedFiles(ctx context.Context, req *jsonrpc2.Request) error {
	var params DidChangeWatchedFilesParams
	if err := decodeParams(req, &params); err != nil {
		return err
	}

	for _, change := range params.Changes {
		path, err := URIToPath(change.URI)
		if err != nil {
			continue
		}
		if validation.IsProjectConfig(path) {
			s.logger.Debug("project configuration changed", logging.Fields{"file": filepath.Base(path)})
			s.orchestrator.ValidateAll(ctx, validation.TriggerConfigChange, s.docs.All())
			return nil
		}
	}
	return nil
}

// solidityObject extracts the "solidity" section of a settings payload.
func solidityObject(raw json.RawMessage) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var settings map[string]interface{}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil
	}
	solidity, _ := settings["solidity"].(map[string]interface{})
	return solidity
}
