// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/pagemod/cmd/pagemod/commands"
	"github.com/walteh/pagemod/cmd/pagemod/opts"
	"github.com/walteh/pagemod/pkg/config"
	"github.com/walteh/pagemod/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// newRootCmd builds the command tree writing console output to out
func newRootCmd(out io.Writer) *cobra.Command {
	o := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "pagemod",
		Short: "Migrate React page components to a shared layout wrapper",
		Long: `pagemod rewrites .tsx pages in place: it swaps each page's root container
for a layout component, repairs the closing tags that go with it, renames
component tags, replaces style tokens and keeps the affected imports in line
with what the file uses. Files it cannot rewrite safely are left untouched
and reported for manual review.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), o.Debug)
			mirror := zerolog.Disabled
			if o.Debug {
				mirror = zerolog.DebugLevel
			}
			o.Console = log.New(out, mirror)

			if err := loadRootOpts(ctx, o); err != nil {
				return err
			}

			cmd.SetContext(log.NewContext(ctx, o.Console))
			return nil
		},
	}

	addRootFlags(rootCmd, o)

	rootCmd.AddCommand(
		commands.NewRunCmd(o),
		commands.NewCheckCmd(o),
		newVersionCmd(out),
	)

	return rootCmd
}

// loadRootOpts loads the config and applies flag overrides
func loadRootOpts(ctx context.Context, o *opts.RootOpts) error {
	logger := zerolog.Ctx(ctx)

	path := o.ConfigFile
	if path == "" {
		if found, ok := config.Find("."); ok {
			path = found
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(ctx, path)
		if err != nil {
			return errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	} else {
		logger.Debug().Msg("no config file, using built-in rules")
	}

	if o.Root != "" {
		cfg.Root = o.Root
	}
	if o.Jobs > 0 {
		cfg.Jobs = o.Jobs
	}
	if o.Backup {
		cfg.Backup = true
	}
	cfg.Skip = append(cfg.Skip, o.Skip...)

	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating config: %w", err)
	}

	o.Config = cfg
	return nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "config file path (.hcl, .yaml or .json); defaults to .pagemod.* in the working directory")
	cmd.PersistentFlags().StringVarP(&o.Root, "root", "r", "", "directory to rewrite, overriding the config")
	cmd.PersistentFlags().IntVarP(&o.Jobs, "jobs", "j", 0, "files processed at once")
	cmd.PersistentFlags().StringSliceVar(&o.Skip, "skip", nil, "additional file names or patterns to leave alone")
	cmd.PersistentFlags().BoolVar(&o.Backup, "backup", false, "copy each rewritten file to file.bak first")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging(ctx context.Context, debug bool) context.Context {
	level := zerolog.ErrorLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(level).With().Timestamp().Logger()
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithContext(ctx)
}
