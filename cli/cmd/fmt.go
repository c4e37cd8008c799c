package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/formula/lang"
)

// Output formats accepted by the --output flag.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Decimal renders as a bare number in JSON and YAML, keeping every digit.
type Decimal apd.Decimal

func (d *Decimal) String() string { return lang.Format((*apd.Decimal)(d)) }

// MarshalJSON implements json.Marshaler.
func (d *Decimal) MarshalJSON() ([]byte, error) { return []byte(d.String()), nil }

// MarshalYAML implements yaml.BytesMarshaler.
func (d *Decimal) MarshalYAML() ([]byte, error) { return []byte(d.String()), nil }

// Result is the outcome of evaluating one expression.
type Result struct {
	Expr    string  `json:"expr"              yaml:"expr"`
	Value   *Decimal `json:"value"             yaml:"value"`
	Percent bool    `json:"percent,omitempty" yaml:"percent,omitempty"`
	Error   string  `json:"error,omitempty"   yaml:"error,omitempty"`
}

// Entry describes one registered symbol.
type Entry struct {
	Kind  string `json:"kind"            yaml:"kind"`
	Name  string `json:"name"            yaml:"name"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// encode writes v to w as JSON or YAML indented by indent spaces.
func encode(w io.Writer, format string, indent int, v any) error {
	var (
		out []byte
		err error
	)

	switch format {
	case OutputJSON:
		out, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		out = append(out, '\n')

	case OutputYAML:
		out, err = yaml.MarshalWithOptions(v,
			yaml.Indent(indent),
			yaml.IndentSequence(true),
		)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

	default:
		return ErrInvalidOutput.With(slog.String("format", format))
	}

	_, err = w.Write(out)

	return err
}

// writeText prints the value of each successful result on its own line and
// reports each failure to stderr.
func writeText(stdout, stderr io.Writer, results []Result, errs []error) {
	for i, r := range results {
		if errs[i] != nil {
			fmt.Fprintf(stderr, "%s: %s\n", r.Expr, describeError(errs[i]))

			continue
		}

		if r.Percent {
			fmt.Fprintf(stdout, "%s (%s)\n", r.Value, lang.FormatPercent((*apd.Decimal)(r.Value)))

			continue
		}

		fmt.Fprintln(stdout, r.Value)
	}
}

// describeError renders err, including the source snippet of a compile
// error.
func describeError(err error) string {
	var ce *lang.CompileError
	if errors.As(err, &ce) {
		return ce.Error() + "\n" + ce.Snippet()
	}

	return err.Error()
}
