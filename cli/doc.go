// Package cli contains the command line interface for formula.
//
// # Usage
//
//	formula [flags] [eval] EXPR...
//	formula tree EXPR
//	formula symbols [--kind KIND,...]
//	formula init [--force]
//	formula repl
//
// Expressions are compiled against the built-in library, the YAML symbol
// files given with --symbols, and the symbols given with --const and --var:
//
//	formula --var '$price=100' --var '%discount=15%' '$price - %discount'
//
// # Configuration
//
// Flag defaults are read from config.json and config.yaml in the user
// configuration directory. The YAML file maps flag names to values and can
// be generated with the init command. Command-line flags take precedence.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output on terminals
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o formula .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
package cli
