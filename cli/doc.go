// Package cli contains the command line interface for stx.
//
// # Usage
//
//	stx [flags] <command> [args]
//
// The default command expands a module and prints the resulting program:
//
//	stx main.js
//	stx expand -o out.js main.js
//	cat main.js | stx expand -
//
// Other commands print the expanded terms (ast), print the syntax objects
// read from a file (tokens), start an interactive session (repl), write the
// current flag values to the configuration file (init), and print the
// version (version).
//
// # Module Search Path
//
// Specifiers that are not relative paths are looked up in each --include
// directory and then in each directory listed in STX_PATH.
//
// # Configuration
//
// Flag values are read from config.yaml (or config.json) in the user
// configuration directory. Command-line flags override them.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
//   - --pprof-mode: Enable profiling (cpu, heap, trace, and others)
//   - --pprof-dir: Set profile output directory
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof
package cli
