package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
)

type (
	contextKey struct{}
	symbolsKey struct{}
	stdinKey   struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable name, or "" if it is undefined.
func kongVar(ctx context.Context, name string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	return ktx.Model.Vars()[name]
}

// stdio returns the writers for command output and diagnostics.
func stdio(ctx context.Context) (stdout, stderr io.Writer) {
	stdout, stderr = os.Stdout, os.Stderr

	if ktx := kongContextFrom(ctx); ktx != nil {
		if ktx.Stdout != nil {
			stdout = ktx.Stdout
		}

		if ktx.Stderr != nil {
			stderr = ktx.Stderr
		}
	}

	return stdout, stderr
}

// withStdin returns a context whose commands read standard input from r.
func withStdin(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey{}, r)
}

func stdinFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

// Symbols names the user-defined symbols registered before compiling.
type Symbols struct {
	// Files are YAML symbol files. "-" reads standard input.
	Files []string
	// Constants and Variables map names to decimal literals.
	Constants map[string]string
	Variables map[string]string
}

// WithSymbols returns a new context.Context carrying sym for the commands.
func WithSymbols(ctx context.Context, sym Symbols) context.Context {
	return context.WithValue(ctx, symbolsKey{}, sym)
}

func symbolsFrom(ctx context.Context) Symbols {
	sym, _ := ctx.Value(symbolsKey{}).(Symbols)

	return sym
}

// stdinSource is the symbol file name that reads from stdin.
const stdinSource = "-"

// uniqueFiles drops repeated symbol files, comparing resolved files rather
// than names so links and relative paths are recognized. Standard input is
// kept once, after every regular file. Files that cannot be read are kept so
// that opening them reports the error.
func uniqueFiles(paths []string) []string {
	var (
		files []string
		seen  []os.FileInfo
		stdin bool
	)

next:
	for _, path := range paths {
		if path == stdinSource {
			stdin = true

			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			files = append(files, path)

			continue
		}

		for _, s := range seen {
			if os.SameFile(s, info) {
				continue next
			}
		}

		seen = append(seen, info)

		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}

		files = append(files, path)
	}

	if stdin {
		files = append(files, stdinSource)
	}

	return files
}
