package cmd

import (
	"bufio"
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

// Eval compiles and evaluates expressions.
type Eval struct {
	Safe   bool     `help:"Substitute zero for evaluation failures; compile errors are still reported"`
	Output string   `help:"Output format (${enum})" default:"text" enum:"text,json,yaml" short:"o"`
	Indent int      `help:"Indent width for JSON and YAML output" default:"2" short:"i"`
	Expr   []string `help:"Expressions to evaluate; read one per line from stdin if omitted" arg:"" optional:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	f, err := newFormula(ctx)
	if err != nil {
		return err
	}

	exprs := e.Expr
	if len(exprs) == 0 {
		exprs, err = readExprs(ctx)
		if err != nil {
			return err
		}
	}

	results := make([]Result, len(exprs))
	errs := make([]error, len(exprs))
	failed := 0

	for i, src := range exprs {
		results[i], errs[i] = e.evaluate(ctx, f, src)
		if errs[i] != nil {
			failed++

			log.DebugContext(ctx, "evaluation failed",
				slog.String("expr", src),
				slog.Any("error", errs[i]),
			)
		}
	}

	stdout, stderr := stdio(ctx)

	if e.Output == OutputText {
		writeText(stdout, stderr, results, errs)
	} else if err := encode(stdout, e.Output, e.Indent, results); err != nil {
		return err
	}

	if failed > 0 {
		return ErrEvaluate.With(
			slog.Int("failed", failed),
			slog.Int("total", len(exprs)),
		)
	}

	return nil
}

func (e *Eval) evaluate(ctx context.Context, f *lang.Formula, src string) (Result, error) {
	r := Result{Expr: src}

	expr, err := f.CompileContext(ctx, src)
	if err != nil {
		r.Error = err.Error()

		return r, err
	}

	r.Percent = expr.IsPercentage()

	if e.Safe {
		r.Value = (*Decimal)(expr.SafeEval())

		return r, nil
	}

	d, err := expr.Eval()
	if err != nil {
		r.Error = err.Error()

		return r, err
	}

	r.Value = (*Decimal)(d)

	return r, nil
}

// readExprs returns the lines of stdin that are neither blank nor comments
// starting with '#'.
func readExprs(ctx context.Context) ([]string, error) {
	var exprs []string

	scan := bufio.NewScanner(stdinFrom(ctx))
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		exprs = append(exprs, line)
	}

	return exprs, scan.Err()
}
