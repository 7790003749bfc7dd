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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/pagemod/cmd/pagemod/opts"
	"github.com/walteh/pagemod/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report what run would do without writing",
		Long: `Check runs the rewrite pipeline without touching any file.
It will:
1. Report the outcome for every file that would change
2. Print diffs when --diff is set
3. Exit non-zero when a file has a structural defect or cannot be read`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "check").Logger().WithContext(cmd.Context())

			summary, err := execute(ctx, o, runSettings{dryRun: true, showDiff: showDiff})
			if err != nil {
				return err
			}

			if n := summary.Count(status.OutcomeStructuralDefect) + summary.Count(status.OutcomeFailed); n > 0 {
				return errors.Errorf("%w: %d files", ErrNeedsReview, n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a unified diff for every file that would change")

	return cmd
}
