// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// pull.go - Pull command implementation for webllama.
//
// Command: pull [model]
// Short:   Download a model, skipping the download when already present
//
// Examples:
//   webllama pull                 Pull the configured model
//   webllama pull llama3.2:3b     Pull a specific model
//   webllama pull --json          Machine-readable result

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/webllama/internal/config"
	"github.com/jeranaias/webllama/internal/ollama"
	"github.com/jeranaias/webllama/internal/util"
)

// HandlePull handles the "pull" command. The pull is skipped when the
// model is already present locally.
func HandlePull(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	cfg.ApplyEnvOverrides()

	model := args.Model
	if model == "" {
		model = cfg.Ollama.Model
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		DefaultModel: model,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if ok, err := client.HasModel(ctx, model); err == nil && ok {
		if args.JSON {
			return NewJSONResponse("pull", PullData{Model: model, AlreadyPresent: true}).Print()
		}
		fmt.Printf("Model already available: %s\n", model)
		return nil
	}

	if args.JSON {
		StderrPrintln("Pulling " + model + "...")
		// A failure is returned unprinted; the caller emits the one
		// JSON error envelope
		if err := client.Pull(context.Background(), model, nil); err != nil {
			return err
		}
		return NewJSONResponse("pull", PullData{Model: model}).Print()
	}

	fmt.Printf("Pulling %s...\n", model)
	if err := client.Pull(context.Background(), model, renderPullProgress); err != nil {
		return err
	}

	fmt.Printf("\n%s %s ready\n", SuccessStyle.Render("[OK]"), model)
	return nil
}

// renderPullProgress prints a single-line progress display for a model
// download. Layer digests are abbreviated to keep the line short.
func renderPullProgress(p ollama.PullProgress) {
	if p.Total > 0 {
		pct := p.Percent()
		digest := util.TruncateRunesNoEllipsis(p.Digest, 19)
		fmt.Printf("\r  %-22s %5.1f%% (%s / %s)   ",
			digest, pct,
			ollama.FormatBytes(p.Completed),
			ollama.FormatBytes(p.Total))
		return
	}
	fmt.Printf("\r  %-60s", p.Status)
}
