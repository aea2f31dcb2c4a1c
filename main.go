// webllama - installer and launcher for a local-LLM web application.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"github.com/jeranaias/webllama/internal/cli"
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
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdLaunch:
		cli.HandleErrorAndExit(cli.HandleLaunch(args), args.JSON)
	case cli.CmdStatus:
		cli.HandleErrorAndExit(cli.HandleStatus(args), args.JSON)
	case cli.CmdDoctor:
		cli.HandleErrorAndExit(cli.HandleDoctor(args), args.JSON)
	case cli.CmdSetup:
		cli.HandleErrorAndExit(cli.HandleSetup(args), args.JSON)
	case cli.CmdConfig:
		cli.HandleErrorAndExit(cli.HandleConfig(args), args.JSON)
	case cli.CmdPull:
		cli.HandleErrorAndExit(cli.HandlePull(args), args.JSON)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		cli.HandleErrorAndExit(cli.HandleLaunch(args), args.JSON)
	}
}
