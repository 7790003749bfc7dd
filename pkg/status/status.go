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
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 Outcome is the per-file result reported to the caller
type Outcome int

const (
	OutcomeUnchanged        Outcome = iota // Nothing to do
	OutcomeTransformed                     // Rewritten
	OutcomeAmbiguousSkip                   // Several roots matched; only the first was rewritten
	OutcomeStructuralDefect                // Could not be fixed safely; left untouched
	OutcomeFailed                          // I/O or configuration error
)

// Outcomes lists every outcome in display order
var Outcomes = []Outcome{
	OutcomeTransformed,
	OutcomeUnchanged,
	OutcomeAmbiguousSkip,
	OutcomeStructuralDefect,
	OutcomeFailed,
}

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeTransformed:
		return "transformed"
	case OutcomeAmbiguousSkip:
		return "ambiguous-skip"
	case OutcomeStructuralDefect:
		return "structural-defect"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// NeedsReview reports whether a person has to look at the file
func (o Outcome) NeedsReview() bool {
	return o == OutcomeAmbiguousSkip || o == OutcomeStructuralDefect || o == OutcomeFailed
}

// Modified reports whether the outcome carries rewritten text
func (o Outcome) Modified() bool {
	return o == OutcomeTransformed || o == OutcomeAmbiguousSkip
}

// 📄 Entry records what happened to one file
type Entry struct {
	Path     string  // Path relative to the manager's base directory
	Outcome  Outcome // Result of the pipeline
	Written  bool    // Whether the file on disk was replaced
	Checksum string  // Content hash of the resulting text
	Detail   string  // Short description of the changes
	Diff     string  // Unified diff, set when the change was not written
	Error    error   // Error associated with this file
}

// 📈 Summary aggregates tracked entries
type Summary struct {
	Total   int
	Written int
	Counts  map[Outcome]int
}

// Count returns the number of entries with outcome o
func (s Summary) Count(o Outcome) int {
	return s.Counts[o]
}

// 💾 FileManager handles file system operations for the rewrite
type FileManager interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
	BackupFile(ctx context.Context, path string) error
}

// 📈 Reporter tracks per-file outcomes
type Reporter interface {
	StartOperation(ctx context.Context, total int)
	Track(ctx context.Context, entry Entry)
	Entries() []Entry
	Summary() Summary
}

// 🔧 Manager implements both FileManager and Reporter
type Manager struct {
	baseDir   string          // Base directory for all operations
	logger    *zerolog.Logger // Logger for status updates
	formatter FileFormatter   // Formatter for status messages

	mu      sync.RWMutex
	entries map[string]Entry

	total     int
	processed int
}

// 🏭 New creates a new status manager
func New(baseDir string, logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		baseDir:   filepath.Clean(baseDir),
		logger:    logger,
		formatter: NewDefaultFileFormatter(),
		entries:   make(map[string]Entry),
	}
}

// BaseDir returns the directory paths are resolved against
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// 🔒 getAbsPath returns the absolute path for a given relative path
func (m *Manager) getAbsPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.baseDir, path)
}

// Checksum generates a SHA-256 hash of the content
func Checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// FileManager interface implementation

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(m.getAbsPath(path))
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

// WriteFileAtomic replaces path with content through a temp file in the same
// directory. The original permissions are kept.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath := m.getAbsPath(path)

	mode := os.FileMode(0644)
	if info, err := os.Stat(absPath); err == nil {
		mode = info.Mode().Perm()
	} else if !os.IsNotExist(err) {
		return errors.Errorf("checking file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("setting temp file mode: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, absPath); err != nil {
		os.Remove(tempPath) // Clean up temp file
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// BackupFile copies path to path.bak
func (m *Manager) BackupFile(ctx context.Context, path string) error {
	absPath := m.getAbsPath(path)
	backupPath := absPath + ".bak"

	// Only backup if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Errorf("checking file existence: %w", err)
	}

	if err := copyFile(absPath, backupPath); err != nil {
		return errors.Errorf("creating backup: %w", err)
	}

	return nil
}

// Reporter interface implementation

// StartOperation resets progress for a run over total files
func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	m.logger.Debug().Int("total", total).Msg(m.formatter.FormatProgress(0, total))
}

func (m *Manager) Track(ctx context.Context, entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[entry.Path] = entry
	m.processed++

	msg := m.formatter.FormatEntry(entry)
	if entry.Error != nil {
		msg = m.formatter.FormatError(entry.Error)
	}

	ev := m.logger.Debug()
	if entry.Outcome.NeedsReview() {
		ev = m.logger.Warn()
	}
	ev.Str("path", entry.Path).
		Str("outcome", entry.Outcome.String()).
		Bool("written", entry.Written).
		Int("processed", m.processed).
		Int("total", m.total).
		Msg(msg)
}

// Entries returns the tracked entries sorted by path
func (m *Manager) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (m *Manager) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Summary{Counts: make(map[Outcome]int)}
	for _, e := range m.entries {
		s.Total++
		s.Counts[e.Outcome]++
		if e.Written {
			s.Written++
		}
	}
	return s
}

// Helper functions

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return errors.Errorf("copying file: %w", err)
	}

	return nil
}
