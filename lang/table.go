package lang

import (
	"fmt"
	"iter"
	"log/slog"
	"strings"
)

// Table is an ordered collection of symbols keyed by case-insensitive name.
// The zero value is an empty table ready for use.
type Table[S Symbol] struct {
	index map[string]int
	items []S
}

// NewTable returns a table containing syms in order.
func NewTable[S Symbol](syms ...S) (*Table[S], error) {
	t := &Table[S]{}

	for _, s := range syms {
		if err := t.Add(s); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func fold(name string) string { return strings.ToLower(name) }

// Add appends s to the table. It fails if a symbol with the same name, in
// any letter case, is already present.
func (t *Table[S]) Add(s S) error {
	key := fold(s.Name())

	if t.index == nil {
		t.index = make(map[string]int)
	}

	if i, ok := t.index[key]; ok {
		return ErrDuplicateSymbol.
			With(
				slog.String("name", s.Name()),
				slog.String("existing", t.items[i].Kind().String()),
			).
			Wrap(fmt.Errorf("%q is already defined", s.Name()))
	}

	t.index[key] = len(t.items)
	t.items = append(t.items, s)

	return nil
}

// Get returns the symbol registered under name.
func (t *Table[S]) Get(name string) (S, bool) {
	var zero S

	if t == nil {
		return zero, false
	}

	i, ok := t.index[fold(name)]
	if !ok {
		return zero, false
	}

	return t.items[i], true
}

// Has reports whether a symbol is registered under name.
func (t *Table[S]) Has(name string) bool {
	_, ok := t.Get(name)

	return ok
}

// At returns the i'th symbol in insertion order.
func (t *Table[S]) At(i int) S { return t.items[i] }

// Last returns the most recently added symbol.
func (t *Table[S]) Last() (S, bool) {
	var zero S

	if t.Len() == 0 {
		return zero, false
	}

	return t.items[len(t.items)-1], true
}

// Len returns the number of symbols in the table.
func (t *Table[S]) Len() int {
	if t == nil {
		return 0
	}

	return len(t.items)
}

// All returns an iterator over the symbols in insertion order.
func (t *Table[S]) All() iter.Seq2[int, S] {
	return func(yield func(int, S) bool) {
		for i := range t.Len() {
			if !yield(i, t.items[i]) {
				return
			}
		}
	}
}

// Names returns an iterator over the registered names in insertion order.
func (t *Table[S]) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, s := range t.All() {
			if !yield(s.Name()) {
				return
			}
		}
	}
}

// Lookup returns the symbol registered under name if it has type T.
func Lookup[T Symbol](t *Table[Symbol], name string) (T, bool) {
	var zero T

	s, ok := t.Get(name)
	if !ok {
		return zero, false
	}

	v, ok := s.(T)
	if !ok {
		return zero, false
	}

	return v, true
}
