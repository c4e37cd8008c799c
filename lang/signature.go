package lang

import (
	"fmt"
	"log/slog"
	"strings"
)

// ParseParameter parses one parameter signature:
//
//	name          required, receives the argument value
//	name=1.5      defaulted
//	~name         lazy, receives the unevaluated expression (may be defaulted)
//	...name       variadic, captures all remaining arguments
//
// Whitespace around each part is ignored.
func ParseParameter(sig string) (*Parameter, error) {
	fail := func(format string, args ...any) error {
		return ErrSignature.
			With(slog.String("parameter", sig)).
			Wrap(fmt.Errorf(format, args...))
	}

	s := strings.TrimSpace(sig)
	mode := ParamEager

	switch {
	case strings.HasPrefix(s, "..."):
		mode = ParamVariadic
		s = strings.TrimSpace(s[len("..."):])
	case strings.HasPrefix(s, "~"):
		mode = ParamLazy
		s = strings.TrimSpace(s[len("~"):])

		if strings.HasPrefix(s, "...") {
			return nil, fail("parameter %q cannot be both lazy and variadic", sig)
		}
	}

	name, def, hasDef := strings.Cut(s, "=")
	name = strings.TrimSpace(name)

	if !isName(name) || isKeyword(name) {
		return nil, fail("invalid parameter name %q", name)
	}

	p := &Parameter{name: name, mode: mode}

	if hasDef {
		if mode == ParamVariadic {
			return nil, fail("variadic parameter %q cannot have a default", name)
		}

		d, err := NewDecimal(def)
		if err != nil {
			return nil, fail("default of %q: %w", name, err)
		}

		p.def = d
	}

	return p, nil
}

// ParseSignature parses a parameter list and validates its ordering: a
// variadic parameter must be last, and once a parameter has a default every
// following non-variadic parameter must have one too.
func ParseSignature(sigs []string) (*Table[*Parameter], error) {
	params := &Table[*Parameter]{}
	defaulted := ""

	for i, sig := range sigs {
		p, err := ParseParameter(sig)
		if err != nil {
			return nil, err
		}

		if p.IsVariadic() && i != len(sigs)-1 {
			return nil, ErrSignature.
				With(slog.String("parameter", sig)).
				Wrap(fmt.Errorf("variadic parameter %q must be last", p.Name()))
		}

		_, hasDef := p.Default()

		switch {
		case hasDef:
			defaulted = p.Name()
		case defaulted != "" && !p.IsVariadic():
			return nil, ErrSignature.
				With(slog.String("parameter", sig)).
				Wrap(fmt.Errorf(
					"parameter %q without default follows defaulted parameter %q",
					p.Name(), defaulted,
				))
		}

		if err := params.Add(p); err != nil {
			return nil, ErrSignature.With(slog.String("parameter", sig)).Wrap(err)
		}
	}

	return params, nil
}
