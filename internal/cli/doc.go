// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the sidediff command line.
//
// # Commands
//
//   - file: compare two files into one report page
//   - dir: compare two directory trees, one section per changed file
//   - css: print the syntax highlighting stylesheet
//   - config: show, get, set and initialise configuration
//   - version, help
//
// # Usage
//
//	cmd, args, err := cli.Parse()
//	if err != nil {
//	    cli.HandleErrorAndExit(err, args.JSON)
//	}
//	switch cmd {
//	case cli.CmdFile:
//	    err = cli.HandleFile(args)
//	// ... other commands
//	}
//
// Flags given on the command line override the config file, which
// overrides the built-in defaults. Every command accepts --json and then
// prints a single JSONResponse on stdout.
package cli
