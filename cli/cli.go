package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formula/cli/cmd"
	"github.com/ardnew/formula/pkg"
)

// CLI is the top-level command-line interface for formula.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	SymbolFiles []string          `help:"YAML symbol file(s) or '-' for stdin" name:"symbols" short:"s" type:"existingfile"`
	Const       map[string]string `help:"Define a constant"                    name:"const"   placeholder:"NAME=VALUE"`
	Var         map[string]string `help:"Define a variable"                    name:"var"     placeholder:"NAME=VALUE"`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Evaluate expressions"`
	Tree cmd.Tree `cmd:""                    help:"Print the canonical form of an expression"`
	List cmd.List `cmd:""                    help:"List registered symbols"                   name:"symbols"`
	Init cmd.Init `cmd:""                    help:"Initialize configuration file"`
	Repl cmd.Repl `cmd:""                    help:"Start an interactive session"`
}

// Run executes the formula CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig + ".yaml")

	vars := kong.Vars{
		"version":            pkg.Version(),
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSymbols(ctx, cmd.Symbols{
		Files:     cli.SymbolFiles,
		Constants: cli.Const,
		Variables: cli.Var,
	})

	cli.Log.start(ctx)

	// no-op unless built with tag pprof and a mode is selected
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

