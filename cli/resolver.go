package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/formula/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads a YAML mapping of
// flag names to values, such as the file written by the init command:
//
//	log-level: debug
//	log-pretty: false
//	symbols:
//	  - ~/.config/formula/finance.yaml
//	var:
//	  $rate: 4.5%
//
// Flag names may be written with hyphens or underscores ("log_level").
// A file that cannot be parsed is ignored. Command-line flags override
// configuration values.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).Decode(&doc)
		if err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring invalid configuration",
				slog.Any("error", err),
			)

			return config{}, nil
		}

		conf := make(config, len(doc))
		for key, val := range doc {
			conf[key] = stringify(val)
		}

		return conf, nil
	}
}

// config implements [kong.Resolver] for YAML configuration files.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// stringify converts the numbers in v to strings, which is the form kong
// parses flag values from.
func stringify(v any) any {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = stringify(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = stringify(e)
		}

		return out
	}

	return v
}
