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

	"github.com/rs/zerolog"
	"github.com/walteh/pagemod/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🏃 OperationRunner executes operations
type OperationRunner struct {
	logger *zerolog.Logger
	async  bool
}

// 🏗️ NewRunner creates a new runner. An async runner returns as soon as the
// context is cancelled instead of waiting for in-flight files.
func NewRunner(logger *zerolog.Logger, async bool) *OperationRunner {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &OperationRunner{
		logger: logger,
		async:  async,
	}
}

// 🏃 Run executes an operation
func (r *OperationRunner) Run(ctx context.Context, op Operation) (status.Summary, error) {
	if r.async {
		return r.runAsync(ctx, op)
	}
	return r.runSync(ctx, op)
}

// 🔄 runSync runs an operation synchronously
func (r *OperationRunner) runSync(ctx context.Context, op Operation) (status.Summary, error) {
	return op.Execute(ctx)
}

type runResult struct {
	summary status.Summary
	err     error
}

// ⚡ runAsync runs an operation asynchronously
func (r *OperationRunner) runAsync(ctx context.Context, op Operation) (status.Summary, error) {
	done := make(chan runResult, 1)

	go func() {
		summary, err := op.Execute(ctx)
		done <- runResult{summary: summary, err: err}
	}()

	// Wait for completion or context cancellation
	select {
	case <-ctx.Done():
		r.logger.Debug().Msg("operation cancelled")
		return status.Summary{}, errors.Errorf("operation cancelled: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return res.summary, errors.Errorf("executing operation: %w", res.err)
		}
		return res.summary, nil
	}
}
