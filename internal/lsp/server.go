// Package lsp serves compile diagnostics and completions to editors over
// the Language Server Protocol.
package lsp

import (
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/xirelogy/azura/internal/compiler"
	"github.com/xirelogy/azura/internal/lexer"
	"github.com/xirelogy/azura/internal/token"
)

const lspName = "azura-lsp"

var log = commonlog.GetLogger("azura.lsp")

// Server keeps open documents and republishes diagnostics on every change.
type Server struct {
	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// New creates a language server reporting the given version.
func New(version string) *Server {
	s := &Server{
		docs:    make(map[string]string),
		version: version,
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)
	return s
}

// Run starts the server on stdio. Blocks until the client disconnects.
func (s *Server) Run() error {
	return s.server.RunStdio()
}

// --- lifecycle ---

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- document synchronization ---

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	log.Debugf("opened %s", uri)
	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With full sync, the last change event contains the full text.
	if len(params.ContentChanges) == 0 {
		return nil
	}
	last := params.ContentChanges[len(params.ContentChanges)-1]
	whole, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.docs[string(uri)] = whole.Text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, whole.Text)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := Diagnose(text)
	log.Debugf("%s: %d diagnostics", uri, len(diagnostics))
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// --- language features ---

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	s.mu.Lock()
	text, ok := s.docs[string(params.TextDocument.URI)]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return Complete(text, params.Position), nil
}

// Diagnose compiles text with a private heap and converts every compile
// error into an LSP diagnostic. Lines and characters are zero-based.
func Diagnose(text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	_, err := compiler.Compile(text, nil, compiler.Options{})
	cerr, ok := err.(*compiler.Error)
	if !ok {
		return diagnostics
	}

	severity := protocol.DiagnosticSeverityError
	source := lspName
	for _, d := range cerr.Diagnostics {
		start := protocol.Position{
			Line:      protocol.UInteger(max(d.Line-1, 0)),
			Character: protocol.UInteger(max(d.Column-1, 0)),
		}
		end := start
		switch {
		case d.AtEnd:
		case d.Lexeme != "":
			end.Character += protocol.UInteger(len(d.Lexeme))
		default:
			end.Character++
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    protocol.Range{Start: start, End: end},
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return diagnostics
}

// Complete offers keywords and the identifiers used in text that start
// with the word under the cursor.
func Complete(text string, pos protocol.Position) []protocol.CompletionItem {
	prefix := wordBefore(text, pos)

	keywordKind := protocol.CompletionItemKindKeyword
	variableKind := protocol.CompletionItemKindVariable
	items := []protocol.CompletionItem{}
	for _, kw := range token.Keywords() {
		if strings.HasPrefix(kw, prefix) {
			items = append(items, protocol.CompletionItem{Label: kw, Kind: &keywordKind})
		}
	}
	for _, name := range identifiers(text) {
		if name != prefix && strings.HasPrefix(name, prefix) {
			items = append(items, protocol.CompletionItem{Label: name, Kind: &variableKind})
		}
	}
	return items
}

// identifiers returns the distinct identifiers in text, sorted.
func identifiers(text string) []string {
	seen := map[string]bool{}
	l := lexer.New(text)
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		if tok.Type == token.Ident {
			seen[tok.Literal] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// wordBefore extracts the identifier characters immediately left of pos.
func wordBefore(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	end := min(int(pos.Character), len(line))
	start := end
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}
	return line[start:end]
}

func isWordChar(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func boolPtr(b bool) *bool {
	return &b
}
