// Package pkg holds the identity of the formula module and the per-user
// directories its command uses.
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version returns the semantic version of the module embedded at build time.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the command name. It also names the configuration and cache
	// directories when the executable name cannot be used.
	Name = "formula"

	// Description summarizes the command for help output.
	Description = "Compile and evaluate decimal formulas"
)

// AuthorInfo identifies an author.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the authors of the module.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
