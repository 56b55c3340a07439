package repl

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/stx/codegen"
	"github.com/ardnew/stx/log"
	"github.com/ardnew/stx/module"
	"github.com/ardnew/stx/store"
)

// Session accumulates the entries accepted by the REPL into one module.
//
// Each entry is expanded together with every entry before it, so macros
// defined earlier remain in scope. Only the output of the new entry is
// returned.
type Session struct {
	modules *module.Modules
	path    string
	logger  log.Logger
	entries []string
	emitted int
}

// NewSession returns a session compiling its entries as the module at path.
// Relative imports resolve against the directory of path.
func NewSession(ms *module.Modules, path string, logger log.Logger) *Session {
	return &Session{modules: ms, path: path, logger: logger}
}

// Source returns the accepted entries joined into one module source.
func (s *Session) Source() string { return strings.Join(s.entries, "\n") }

// Len returns the number of accepted entries.
func (s *Session) Len() int { return len(s.entries) }

// Expand expands input after the accepted entries and returns the code
// generated for input. The entry is accepted only when expansion succeeds.
func (s *Session) Expand(ctx context.Context, input string) (string, error) {
	entries := append(slices.Clone(s.entries), input)

	code, n, err := s.compile(ctx, strings.Join(entries, "\n"), s.emitted)
	if err != nil {
		return "", err
	}

	s.entries = entries
	s.emitted = n

	return code, nil
}

// Replace discards the accepted entries and expands src as the only entry.
// The session is unchanged when expansion fails.
func (s *Session) Replace(ctx context.Context, src string) (string, error) {
	code, n, err := s.compile(ctx, src, 0)
	if err != nil {
		return "", err
	}

	s.entries = []string{src}
	s.emitted = n

	return code, nil
}

// Reset discards every accepted entry.
func (s *Session) Reset() {
	s.entries = nil
	s.emitted = 0
}

func (s *Session) compile(ctx context.Context, src string, from int) (string, int, error) {
	m, err := s.modules.Compile(ctx, src, s.path, 0)
	if err != nil {
		return "", 0, err
	}

	if from > len(m.Items) {
		from = 0
	}

	code, err := codegen.GenerateAll(m.Items[from:])
	if err != nil {
		return "", 0, err
	}

	s.logger.TraceContext(ctx, "repl expanded",
		slog.Int("terms", len(m.Items)),
		slog.Int("new_terms", len(m.Items)-from),
	)

	return code, len(m.Items), nil
}

// Names returns every identifier name bound so far, in sorted order.
func (s *Session) Names() []string {
	return slices.Collect(s.modules.Bindings().Names())
}

// Macros returns the names of the compile-time bindings defined so far, in
// sorted order without duplicates.
func (s *Session) Macros() []string {
	st := s.modules.Store()

	var names []string

	for key := range st.Keys() {
		name, _, ok := strings.Cut(key, "#")
		if !ok || strings.Contains(key, ":") {
			continue
		}

		if v, _ := st.Get(key); isRuntime(v) {
			continue
		}

		names = append(names, name)
	}

	slices.Sort(names)

	return slices.Compact(names)
}

func isRuntime(v any) bool {
	_, ok := v.(store.Runtime)

	return ok
}
