// Package main is the entry point for the azbind CLI.
//
// azbind binds a GitHub repository to an Azure deployment principal: it
// reconciles the federated identity credentials and role assignments a
// CI workflow needs to deploy without stored secrets, verifies the result,
// and reports the identifiers to register as workflow secrets.
//
// Commands: setup, verify, init, version, completion.
//
// For detailed usage information, run:
//
//	azbind --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/azbind/cmd/azbind/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
