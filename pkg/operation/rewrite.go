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

package operation

import (
	"context"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"
	"github.com/walteh/pagemod/pkg/codemod"
	"github.com/walteh/pagemod/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 📦 NewRewriteOperation creates a new rewrite operation
func NewRewriteOperation(opts Options) Operation {
	return &rewriteOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

// 📦 rewriteOperation runs the transformer over every discovered file
type rewriteOperation struct {
	BaseOperation
}

// 🏃 Execute runs the rewrite operation. A failure on one file is recorded
// in its entry and does not stop the others; only discovery errors and
// cancellation are returned.
func (op *rewriteOperation) Execute(ctx context.Context) (status.Summary, error) {
	if err := op.validate(); err != nil {
		return status.Summary{}, errors.Errorf("validating options: %w", err)
	}

	files, err := Discover(ctx, op.Root, op.Include, op.Skip)
	if err != nil {
		return status.Summary{}, errors.Errorf("discovering files: %w", err)
	}

	// Start tracking progress
	op.Reporter.StartOperation(ctx, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(op.Jobs)

	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry := op.processFile(gctx, file)
			op.Reporter.Track(gctx, entry)
			if op.OnEntry != nil {
				op.OnEntry(gctx, entry)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return op.Reporter.Summary(), errors.Errorf("processing files: %w", err)
	}

	return op.Reporter.Summary(), nil
}

// 📄 processFile reads, transforms and writes a single file
func (op *rewriteOperation) processFile(ctx context.Context, file string) status.Entry {
	logger := zerolog.Ctx(ctx).With().Str("file", file).Logger()

	content, err := op.Files.ReadFile(ctx, file)
	if err != nil {
		return failed(file, errors.Errorf("reading %s: %w", file, err))
	}

	out, rep := op.Transformer.Process(ctx, codemod.SourceUnit{Path: file, Text: string(content)})

	entry := status.Entry{
		Path:     file,
		Outcome:  rep.Outcome,
		Checksum: status.Checksum([]byte(out.Text)),
		Detail:   rep.Detail(),
		Error:    rep.Err,
	}

	if !rep.Outcome.Modified() {
		return entry
	}

	if op.DryRun {
		diff, err := unifiedDiff(file, string(content), out.Text)
		if err != nil {
			logger.Debug().Err(err).Msg("diff failed")
		}
		entry.Diff = diff
		return entry
	}

	if op.Backup {
		if err := op.Files.BackupFile(ctx, file); err != nil {
			return failed(file, errors.Errorf("backing up %s: %w", file, err))
		}
	}

	if err := op.Files.WriteFileAtomic(ctx, file, []byte(out.Text)); err != nil {
		return failed(file, errors.Errorf("writing %s: %w", file, err))
	}
	entry.Written = true

	logger.Debug().Str("outcome", rep.Outcome.String()).Msg("file written")
	return entry
}

func failed(file string, err error) status.Entry {
	return status.Entry{
		Path:    file,
		Outcome: status.OutcomeFailed,
		Detail:  err.Error(),
		Error:   err,
	}
}

// 📝 unifiedDiff renders the change to file as a unified diff
func unifiedDiff(file, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + file,
		ToFile:   "b/" + file,
		Context:  3,
	})
}
