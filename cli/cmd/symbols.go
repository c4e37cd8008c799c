package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/cockroachdb/apd/v3"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/formula/builtin"
	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
	"github.com/ardnew/formula/pkg"
)

// SymbolFile is the YAML document of a symbol file.
type SymbolFile struct {
	Constants map[string]Number `yaml:"constants"`
	Variables map[string]Number `yaml:"variables"`
}

// Number is a decimal value in a symbol file. It accepts YAML integers and
// floats as well as strings in decimal literal notation, such as "15%" or
// "1_000.25".
type Number struct {
	*apd.Decimal
}

// UnmarshalYAML implements yaml.InterfaceUnmarshaler.
func (n *Number) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}

	var (
		d   *apd.Decimal
		err error
	)

	switch v := v.(type) {
	case string:
		d, err = lang.NewDecimal(v)
	case uint64:
		d, err = lang.NewDecimal(strconv.FormatUint(v, 10))
	case int64:
		d = lang.Int(v)
	case int:
		d = lang.Int(int64(v))
	case float64:
		d, err = lang.NewDecimal(strconv.FormatFloat(v, 'g', -1, 64))
	default:
		err = fmt.Errorf("%v (%T) is not a number", v, v)
	}

	if err != nil {
		return err
	}

	n.Decimal = d

	return nil
}

// ReadSymbolFile decodes a symbol file. Unknown sections are rejected and an
// empty document has no symbols.
func ReadSymbolFile(r io.Reader) (*SymbolFile, error) {
	var doc SymbolFile

	err := yaml.NewDecoder(r, yaml.DisallowUnknownField()).Decode(&doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return &doc, nil
}

// Register adds the constants and then the variables of s to f, each in
// name order. Every entry is attempted; the failures are returned together.
func (s *SymbolFile) Register(f *lang.Formula) error {
	var errs pkg.Error

	for _, name := range slices.Sorted(maps.Keys(s.Constants)) {
		if _, err := f.AddConstant(name, s.Constants[name].Decimal); err != nil {
			errs = errs.Append(err)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(s.Variables)) {
		if _, err := f.AddVariable(name, s.Variables[name].Decimal); err != nil {
			errs = errs.Append(err)
		}
	}

	return errs.Err()
}

// loadSymbolFile reads the symbol file at path into f.
func loadSymbolFile(ctx context.Context, f *lang.Formula, path string) error {
	r := stdinFrom(ctx)

	if path != stdinSource {
		file, err := os.Open(path)
		if err != nil {
			return ErrReadSymbols.With(slog.String("file", path)).Wrap(err)
		}
		defer file.Close()

		r = file
	}

	doc, err := ReadSymbolFile(r)
	if err != nil {
		return ErrSymbolFile.With(slog.String("file", path)).Wrap(err)
	}

	if err := doc.Register(f); err != nil {
		return ErrSymbolFile.With(slog.String("file", path)).Wrap(err)
	}

	log.TraceContext(ctx, "loaded symbol file",
		slog.String("file", path),
		slog.Int("constants", len(doc.Constants)),
		slog.Int("variables", len(doc.Variables)),
	)

	return nil
}

// define registers the literal values of defs with add, in name order.
func define[S lang.Symbol](
	defs map[string]string,
	add func(string, *apd.Decimal) (S, error),
) error {
	var errs pkg.Error

	for _, name := range slices.Sorted(maps.Keys(defs)) {
		d, err := lang.NewDecimal(defs[name])
		if err == nil {
			_, err = add(name, d)
		}

		if err != nil {
			errs = errs.Append(ErrDefine.With(slog.String("name", name)).Wrap(err))
		}
	}

	return errs.Err()
}

// newFormula returns a formula with the built-in library and the symbols
// carried by ctx registered.
func newFormula(ctx context.Context) (*lang.Formula, error) {
	f, err := builtin.New(lang.WithLogger(log.Default()))
	if err != nil {
		return nil, err
	}

	sym := symbolsFrom(ctx)

	var errs pkg.Error

	for _, path := range uniqueFiles(sym.Files) {
		errs = errs.Append(loadSymbolFile(ctx, f, path))
	}

	errs = errs.Append(define(sym.Constants, f.AddConstant))
	errs = errs.Append(define(sym.Variables, f.SetVariable))

	if err := errs.Err(); err != nil {
		return nil, err
	}

	return f, nil
}
