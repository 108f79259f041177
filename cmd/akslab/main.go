// Package main is the entry point for the akslab CLI.
//
// akslab deploys self-contained, secured Azure Kubernetes Service lab
// environments: a private-by-default cluster with monitoring, a container
// registry, a key vault and a policy baseline, each lab uniquely named so
// several can coexist in one subscription.
//
// Commands: deploy, destroy, list, template, doctor.
//
// For detailed usage information, run:
//
//	akslab --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/akslab/cmd/akslab/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
