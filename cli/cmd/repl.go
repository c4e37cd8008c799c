package cmd

import (
	"context"

	"github.com/ardnew/formula/cli/cmd/repl"
	"github.com/ardnew/formula/log"
)

// Repl starts an interactive session.
type Repl struct{}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	f, err := newFormula(ctx)
	if err != nil {
		return err
	}

	return repl.Run(ctx, f, kongVar(ctx, CacheIdentifier), log.Default())
}
