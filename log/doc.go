// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The expander threads a [Logger] through every long-lived component
// (compiler, module orchestrator, evaluator, REPL) so that macro invocations
// and module lifecycle events can be traced without a global.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("module compiled", slog.String("path", path))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithCaller(true))
//
// # Levels
//
// In addition to the four [log/slog] levels the package defines
// [LevelTrace], used for per-macro and per-binding events that are too
// chatty for debug output.
//
// # Output Formats
//
// Two output formats are supported: [FormatJSON] (default) and
// [FormatText]. With [WithPretty] enabled, text output is colorized with
// lipgloss styles and JSON output is indented.
//
// # Package Logger
//
// The package-level functions ([Info], [Debug], ...) write through a default
// logger reconfigured with [Config]. [Discard] returns a logger that drops
// everything and is the zero-cost default for library components.
package log
