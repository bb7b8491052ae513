// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package validate checks a command list without running it.
package validate

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/syncloop/cmd/syncloop/options"
	"github.com/urfave/cli/v3"
)

// ValidateCmd loads the command list and options and reports the number of executable commands.
var ValidateCmd = &cli.Command{
	Name:   "validate",
	Usage:  "Check the options and the command list without running anything",
	Flags:  options.Shared(),
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	opts, err := options.Build(ctx, cmd)
	if err != nil {
		return options.Fatal(err)
	}

	cmds, err := options.Loader(ctx, opts)()
	if err != nil {
		return options.Fatal(err)
	}

	w := cmd.Root().Writer
	fmt.Fprintf(w, "%s: %d executable command(s)\n", opts.List, len(cmds)) //nolint:errcheck

	if opts.Verbose {
		for _, c := range cmds {
			fmt.Fprintf(w, "  %4d  %s\n", c.Line, c.Text) //nolint:errcheck
		}
	}

	return nil
}
