package cmd

import (
	"context"
	"fmt"
	"strings"
)

// Tree prints the canonical rendering of a compiled expression.
type Tree struct {
	Expr []string `help:"Expression to compile; words are joined with spaces" arg:""`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) error {
	f, err := newFormula(ctx)
	if err != nil {
		return err
	}

	src := strings.Join(t.Expr, " ")

	expr, err := f.CompileContext(ctx, src)
	if err != nil {
		_, stderr := stdio(ctx)
		fmt.Fprintln(stderr, describeError(err))

		return err
	}

	stdout, _ := stdio(ctx)
	_, err = fmt.Fprintln(stdout, expr)

	return err
}
