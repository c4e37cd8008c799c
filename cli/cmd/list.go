package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ardnew/formula/lang"
)

// List prints the registered symbols.
type List struct {
	Kind   []string `help:"Only list symbols of these kinds (${enum})" enum:"constant,variable,function" short:"k" sep:","`
	Output string   `help:"Output format (${enum})" default:"text" enum:"text,json,yaml" short:"o"`
	Indent int      `help:"Indent width for JSON and YAML output" default:"2" short:"i"`
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Run executes the symbols command.
func (l *List) Run(ctx context.Context) error {
	f, err := newFormula(ctx)
	if err != nil {
		return err
	}

	entries := l.entries(f)
	stdout, _ := stdio(ctx)

	if l.Output != OutputText {
		return encode(stdout, l.Output, l.Indent, entries)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("KIND", "NAME", "VALUE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})

	for _, e := range entries {
		t.Row(e.Kind, e.Name, e.Value)
	}

	_, err = fmt.Fprintln(stdout, t.Render())

	return err
}

// entries describes the symbols of f in registration order.
func (l *List) entries(f *lang.Formula) []Entry {
	var entries []Entry

	for _, s := range f.Symbols().All() {
		kind := s.Kind().String()
		if len(l.Kind) > 0 && !slices.Contains(l.Kind, kind) {
			continue
		}

		entries = append(entries, Entry{
			Kind:  kind,
			Name:  s.Name(),
			Value: valueOf(s),
		})
	}

	return entries
}

// valueOf renders the value of a constant or stored variable, or the
// signature of a function.
func valueOf(s lang.Symbol) string {
	switch s := s.(type) {
	case *lang.Constant:
		return lang.Format(s.Value())

	case *lang.Variable:
		if s.IsExternal() {
			return ""
		}

		d, err := s.Value()
		if err != nil {
			return ""
		}

		if s.IsPercentage() {
			return lang.FormatPercent(d)
		}

		return lang.Format(d)

	case *lang.Function:
		return s.Signature()
	}

	return ""
}
