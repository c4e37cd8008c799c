package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

var prefixRules = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`^__debug_bin\d*$`), Name}, // dlv output
	{regexp.MustCompile(`^\.+`), ""},
	{regexp.MustCompile(`\.test$`), ""}, // go test binaries
}

// Prefix returns the base name of the running executable without its
// extension, used to name the per-user directories. Names produced by
// debuggers and test builds are mapped back to [Name].
var Prefix = sync.OnceValue(func() string {
	path := os.Args[0]
	if exe, err := os.Executable(); err == nil {
		path = exe
	}

	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))

	for _, rule := range prefixRules {
		id = rule.pattern.ReplaceAllString(id, rule.replace)
	}

	if id == "" {
		return Name
	}

	return id
})

// userDir returns the directory named by [Prefix] under the directory from
// primary, falling back to fallback under the home directory and then to
// the working directory.
func userDir(primary func() (string, error), fallback string) string {
	dir, err := primary()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, fallback)
		} else if wd, werr := os.Getwd(); werr == nil {
			dir = wd
		} else {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}

// ConfigDir returns the per-user configuration directory.
var ConfigDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// CacheDir returns the per-user cache directory for history and profiles.
var CacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})
