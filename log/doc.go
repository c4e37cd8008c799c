// Package log provides leveled, structured logging on top of [log/slog].
//
// A [Logger] is made once with functional options and is immutable
// afterward, so it can be shared freely between goroutines:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
//	logger.Info("compiled", slog.Int("nodes", 12))
//
// Every level has a variant that takes a [context.Context]. The variants
// without one use [DefaultContextProvider].
//
// # Levels
//
// [LevelTrace] extends the levels of [log/slog] below [LevelDebug] for
// per-operation detail such as compiler tracing. Levels are parsed and
// printed by name, case-insensitively, so "TRACE" and "warn" are both valid
// flag values.
//
// # Pretty output
//
// With [WithPretty] enabled, text records are written as styled key=value
// lines and JSON records as indented blocks. Styles come from lipgloss and
// are omitted when the output is not a terminal.
//
// # Package logger
//
// The package-level functions write through a shared logger that
// [Config] reconfigures in place, which lets command-line flags take effect
// while they are still being parsed.
package log
