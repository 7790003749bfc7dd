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

package commands

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/pagemod/cmd/pagemod/opts"
	"github.com/walteh/pagemod/pkg/codemod"
	"github.com/walteh/pagemod/pkg/log"
	"github.com/walteh/pagemod/pkg/operation"
	"github.com/walteh/pagemod/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ErrNeedsReview is returned when at least one file could not be rewritten safely
var ErrNeedsReview = errors.Base("files need manual review")

// NewRunCmd creates a new run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rewrite pages in place",
		Long: `Run rewrites every matching page under the root.
It will:
1. Discover files with the include globs, minus the skip list
2. Run the rewrite pipeline on each file
3. Write changed files back atomically
4. Print one line per changed file and a summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "run").Logger().WithContext(cmd.Context())

			summary, err := execute(ctx, o, runSettings{dryRun: dryRun, showDiff: dryRun})
			if err != nil {
				return err
			}

			if n := summary.Count(status.OutcomeFailed); n > 0 {
				return errors.Errorf("%d files failed", n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print diffs instead of writing files")

	return cmd
}

type runSettings struct {
	dryRun   bool
	showDiff bool
}

// execute runs the pipeline over the configured tree and prints the report
func execute(ctx context.Context, o *opts.RootOpts, s runSettings) (status.Summary, error) {
	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)
	cfg := o.Config

	pipeline, err := codemod.New(cfg)
	if err != nil {
		return status.Summary{}, errors.Errorf("building pipeline: %w", err)
	}

	mgr := status.New(cfg.Root, logger)

	op := operation.NewRewriteOperation(operation.Options{
		Root:        cfg.Root,
		Include:     cfg.Include,
		Skip:        cfg.Skip,
		Transformer: pipeline,
		Files:       mgr,
		Reporter:    mgr,
		Jobs:        cfg.Jobs,
		DryRun:      s.dryRun,
		Backup:      cfg.Backup,
		OnEntry: func(ctx context.Context, entry status.Entry) {
			if entry.Outcome == status.OutcomeUnchanged && !o.Debug {
				return
			}
			if !s.showDiff {
				entry.Diff = ""
			}
			console.Report(ctx, entry)
		},
	})

	console.StartRun(ctx, log.RunOperation{
		Root:   cfg.Root,
		Config: cfg.Location(),
		DryRun: s.dryRun,
	})
	defer console.EndRun(ctx)

	summary, err := operation.NewRunner(logger, true).Run(ctx, op)
	if err != nil {
		return summary, errors.Errorf("rewriting %s: %w", cfg.Root, err)
	}

	if err := console.Summary(summary); err != nil {
		logger.Debug().Err(err).Msg("rendering summary")
	}

	switch {
	case summary.Count(status.OutcomeStructuralDefect) > 0:
		console.Warningf("%d files could not be rewritten safely and were left untouched", summary.Count(status.OutcomeStructuralDefect))
	case summary.Count(status.OutcomeAmbiguousSkip) > 0:
		console.Warningf("%d files had several matching roots; only the first was wrapped", summary.Count(status.OutcomeAmbiguousSkip))
	case s.dryRun:
		console.Successf("%d of %d files would change", summary.Count(status.OutcomeTransformed), summary.Total)
	default:
		console.Successf("%d of %d files rewritten", summary.Written, summary.Total)
	}

	return summary, nil
}
