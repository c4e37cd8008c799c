// Package profile provides optional runtime profiling for the formula
// command through [github.com/pkg/profile].
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof -o formula .
//
// Without the tag, [Profiler.Start] always returns a no-op [Stopper],
// [Modes] is empty, and the command hides its profiling flags.
//
// With the tag, the modes are allocs, block, clock, cpu, goroutine, heap,
// mem, mutex, thread, and trace. Each writes a file named after the mode,
// such as cpu.pprof, into [Profiler.Dir]:
//
//	formula --pprof-mode cpu eval 'sum(1, 2, 3) ^ 400'
//	go tool pprof -http=: ~/.cache/formula/pprof/cpu.pprof
//
// Building with the tag also registers the [net/http/pprof] handlers on
// [net/http.DefaultServeMux] for programs that embed the package and serve
// HTTP.
package profile
