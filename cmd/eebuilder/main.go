// Package main provides the entry point for the eebuilder CLI.
package main

import (
	"context"
	"os"

	"github.com/tolarewaju3/visual-ansible-ee-builder-sub000/internal/cli"
)

// Set via -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "" //nolint:gochecknoglobals // set at link time
	commit  = "" //nolint:gochecknoglobals // set at link time
	date    = "" //nolint:gochecknoglobals // set at link time
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	cli.CloseLogFile()
	os.Exit(cli.ExitCodeForError(err))
}
