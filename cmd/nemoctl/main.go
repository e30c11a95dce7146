// Package main is the entry point for the nemoctl CLI.
//
// nemoctl prepares a Kubernetes cluster for the NeMo guardrails
// microservice stack: it verifies client prerequisites, provisions the
// registry pull secret and API-key secret idempotently, resolves which
// chart to install across the configured NGC repositories, and installs it.
//
// Commands: deploy, doctor, resolve, version.
//
// For detailed usage information, run:
//
//	nemoctl --help
package main

import (
	"fmt"
	"os"

	"github.com/nemoctl/nemoctl/cmd/nemoctl/commands"
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
