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
	"os"
	"path"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/pagemod/pkg/codemod"
	"github.com/walteh/pagemod/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operation is one pass over the source tree
type Operation interface {
	Execute(ctx context.Context) (status.Summary, error)
}

// 🔧 Transformer rewrites the text of one file
type Transformer interface {
	Process(ctx context.Context, unit codemod.SourceUnit) (codemod.SourceUnit, codemod.Report)
}

// 🔧 Options contains configuration for an operation
type Options struct {
	Root    string   // Directory the globs are resolved against
	Include []string // Doublestar patterns selecting files
	Skip    []string // Patterns or file names to leave alone

	Transformer Transformer
	Files       status.FileManager
	Reporter    status.Reporter

	Jobs   int  // Files processed at once; zero means GOMAXPROCS
	DryRun bool // Compute diffs instead of writing
	Backup bool // Copy each file to file.bak before replacing it

	// OnEntry is called once per file after it has been tracked
	OnEntry func(ctx context.Context, entry status.Entry)
}

// 🏗️ BaseOperation holds what every operation shares
type BaseOperation struct {
	Options
}

// 🏭 NewBaseOperation fills in defaults
func NewBaseOperation(opts Options) BaseOperation {
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	return BaseOperation{Options: opts}
}

func (op *BaseOperation) validate() error {
	if op.Transformer == nil {
		return errors.Errorf("transformer is required")
	}
	if op.Files == nil {
		return errors.Errorf("file manager is required")
	}
	if op.Reporter == nil {
		return errors.Errorf("reporter is required")
	}
	if len(op.Include) == 0 {
		return errors.Errorf("at least one include pattern is required")
	}
	return nil
}

// 🔍 Discover returns the files under root matching any include pattern and
// no skip pattern, as sorted slash separated paths relative to root. A skip
// pattern without a slash is matched against the file name alone.
func Discover(ctx context.Context, root string, include, skip []string) ([]string, error) {
	logger := zerolog.Ctx(ctx)
	fsys := os.DirFS(root)

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("matching %q under %s: %w", pattern, root, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true

			if by, ok := skipped(m, skip); ok {
				logger.Debug().Str("file", m).Str("pattern", by).Msg("file skipped by pattern")
				continue
			}
			files = append(files, m)
		}
	}

	sort.Strings(files)
	logger.Debug().Str("root", root).Int("files", len(files)).Msg("discovered files")
	return files, nil
}

func skipped(file string, skip []string) (string, bool) {
	for _, pattern := range skip {
		target := file
		if !strings.Contains(pattern, "/") {
			target = path.Base(file)
		}
		if ok, err := doublestar.Match(pattern, target); err == nil && ok {
			return pattern, true
		}
	}
	return "", false
}
