// Package cmd implements the formula subcommands.
//
// Every command compiles against the same symbols: the built-in library,
// the YAML symbol files named by --symbols, and the constants and variables
// given with --const and --var. Symbol files have two optional sections:
//
//	constants:
//	  TAX: 0.2
//	variables:
//	  $price: 100
//	  "%discount": 15%
//
// Values are decimal literals. Quote a value to keep every digit of a
// number that does not fit a float64.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
