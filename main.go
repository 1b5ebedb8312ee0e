// sidediff - side-by-side HTML diffs with a coverage overlay.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/jeranaias/sidediff/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args, err := cli.Parse()
	if err != nil {
		if !args.JSON {
			cli.PrintUsage(os.Stderr)
		}
		cli.HandleErrorAndExit(err, args.JSON)
	}

	// Route to appropriate handler
	switch cmd {
	case cli.CmdFile:
		err = cli.HandleFile(args)
	case cli.CmdDir:
		err = cli.HandleDir(args)
	case cli.CmdCSS:
		err = cli.HandleCSS(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		err = cli.HandleVersion(args)
	default:
		err = cli.HandleHelp(args)
	}

	cli.HandleErrorAndExit(err, args.JSON)
}
