package profile

// Tag is the build tag that enables profiling. It also names the default
// output subdirectory.
const Tag = "pprof"

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes a profiling session.
type Profiler struct {
	Mode  string // One of [Modes]; empty disables profiling
	Dir   string // Output directory; empty uses the working directory
	Quiet bool   // Suppress the profiler's own log output
}

// Option modifies a [Profiler].
type Option func(*Profiler)

// WithMode sets the profiling mode.
func WithMode(mode string) Option { return func(p *Profiler) { p.Mode = mode } }

// WithDir sets the output directory.
func WithDir(dir string) Option { return func(p *Profiler) { p.Dir = dir } }

// WithQuiet sets whether the profiler logs its start and stop.
func WithQuiet(quiet bool) Option { return func(p *Profiler) { p.Quiet = quiet } }

// New returns a profiler configured by opts.
func New(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		opt(&p)
	}

	return p
}

// Start begins profiling. It returns a no-op [Stopper] when the mode is
// empty or unknown, or when the binary was built without the [Tag] build
// tag. Both Start and Stop are always safe to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
