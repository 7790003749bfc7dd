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

package status

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    string
		review  bool
	}{
		{name: "unchanged", outcome: OutcomeUnchanged, want: "unchanged"},
		{name: "transformed", outcome: OutcomeTransformed, want: "transformed"},
		{name: "ambiguous", outcome: OutcomeAmbiguousSkip, want: "ambiguous-skip", review: true},
		{name: "defect", outcome: OutcomeStructuralDefect, want: "structural-defect", review: true},
		{name: "failed", outcome: OutcomeFailed, want: "failed", review: true},
		{name: "unknown", outcome: Outcome(42), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.String(), "outcome name should match")
			assert.Equal(t, tt.review, tt.outcome.NeedsReview(), "review flag should match")
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		mode     os.FileMode
		content  string
		wantMode os.FileMode
	}{
		{
			name:     "replaces_existing_file",
			existing: "old",
			mode:     0644,
			content:  "new",
			wantMode: 0644,
		},
		{
			name:     "preserves_permissions",
			existing: "old",
			mode:     0600,
			content:  "new",
			wantMode: 0600,
		},
		{
			name:     "creates_missing_file",
			content:  "fresh",
			wantMode: 0644,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			path := filepath.Join(dir, "Page.tsx")
			if tt.existing != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.existing), tt.mode))
				require.NoError(t, os.Chmod(path, tt.mode))
			}

			mgr := New(dir, nil)
			require.NoError(t, mgr.WriteFileAtomic(ctx, "Page.tsx", []byte(tt.content)))

			got, err := mgr.ReadFile(ctx, "Page.tsx")
			require.NoError(t, err, "reading back should succeed")
			assert.Equal(t, tt.content, string(got), "content should be replaced")

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, info.Mode().Perm(), "mode should match")

			leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
			require.NoError(t, err)
			assert.Empty(t, leftovers, "no temp files should remain")
		})
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	mgr := New(t.TempDir(), nil)
	err := mgr.WriteFileAtomic(context.Background(), filepath.Join("missing", "Page.tsx"), []byte("x"))
	require.Error(t, err, "writing into a missing directory should fail")
	assert.Contains(t, err.Error(), "creating temp file")
}

func TestBackupFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Page.tsx"), []byte("original"), 0644))

	mgr := New(dir, nil)
	require.NoError(t, mgr.BackupFile(ctx, "Page.tsx"))
	require.NoError(t, mgr.BackupFile(ctx, "Missing.tsx"), "missing files are not backed up")

	got, err := os.ReadFile(filepath.Join(dir, "Page.tsx.bak"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	_, err = os.Stat(filepath.Join(dir, "Missing.tsx.bak"))
	assert.True(t, os.IsNotExist(err), "no backup should exist for a missing file")
}

func TestTrackAndSummary(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	mgr := New(t.TempDir(), &logger)
	ctx := context.Background()

	mgr.StartOperation(ctx, 4)
	mgr.Track(ctx, Entry{Path: "b.tsx", Outcome: OutcomeTransformed, Written: true})
	mgr.Track(ctx, Entry{Path: "a.tsx", Outcome: OutcomeUnchanged})
	mgr.Track(ctx, Entry{Path: "c.tsx", Outcome: OutcomeStructuralDefect, Detail: "unclosed <PremiumPageLayout>"})
	mgr.Track(ctx, Entry{Path: "d.tsx", Outcome: OutcomeFailed, Error: assert.AnError})

	entries := mgr.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "a.tsx", entries[0].Path, "entries should be sorted by path")
	assert.Equal(t, "d.tsx", entries[3].Path, "entries should be sorted by path")

	summary := mgr.Summary()
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Written)
	assert.Equal(t, 1, summary.Count(OutcomeTransformed))
	assert.Equal(t, 1, summary.Count(OutcomeStructuralDefect))
	assert.Equal(t, 0, summary.Count(OutcomeAmbiguousSkip))
}

func TestFormatEntryLine(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name   string
		entry  Entry
		prefix string
		detail string
	}{
		{
			name:   "transformed",
			entry:  Entry{Path: "Profile.tsx", Outcome: OutcomeTransformed, Detail: "wrapper, 2 imports"},
			prefix: "    ⟳ Profile.tsx",
			detail: "wrapper, 2 imports",
		},
		{
			name:   "unchanged",
			entry:  Entry{Path: "Home.tsx", Outcome: OutcomeUnchanged},
			prefix: "    - Home.tsx",
		},
		{
			name:   "defect",
			entry:  Entry{Path: "Broken.tsx", Outcome: OutcomeStructuralDefect},
			prefix: "    ! Broken.tsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := FormatEntryLine(tt.entry)
			assert.True(t, strings.HasPrefix(line, tt.prefix), "line %q should start with %q", line, tt.prefix)
			assert.Contains(t, line, tt.entry.Outcome.String())
			if tt.detail != "" {
				assert.True(t, strings.HasSuffix(line, tt.detail), "detail should end the line")
			}
		})
	}
}
