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

// Package edit queues byte-offset edits against an immutable text and applies
// them in one pass. Offsets always refer to the original text, so callers can
// compute every edit from a single scan.
package edit

import (
	"sort"

	"gitlab.com/tozd/go/errors"
)

// ErrOverlap is returned by Apply when two edits touch the same bytes.
var ErrOverlap = errors.Base("overlapping edits")

// ✏️ Edit replaces src[Start:End] with NewText
type Edit struct {
	Start   int
	End     int
	NewText string
}

// 📝 Buffer accumulates edits for one text
type Buffer struct {
	src   string
	edits []Edit
}

// 🏭 NewBuffer creates a buffer over src
func NewBuffer(src string) *Buffer {
	return &Buffer{src: src}
}

// Replace queues a replacement of src[start:end]
func (b *Buffer) Replace(start, end int, text string) {
	b.edits = append(b.edits, Edit{Start: start, End: end, NewText: text})
}

// Insert queues an insertion at offset
func (b *Buffer) Insert(offset int, text string) {
	b.Replace(offset, offset, text)
}

// Delete queues a deletion of src[start:end]
func (b *Buffer) Delete(start, end int) {
	b.Replace(start, end, "")
}

// Len returns the number of queued edits
func (b *Buffer) Len() int {
	return len(b.edits)
}

// 🔄 Apply returns the text with every queued edit applied. Edits are applied
// from the end of the text backwards so earlier offsets stay valid; inserts
// at the same offset keep their queue order.
func (b *Buffer) Apply() (string, error) {
	if len(b.edits) == 0 {
		return b.src, nil
	}

	type queued struct {
		Edit
		seq int
	}
	edits := make([]queued, len(b.edits))
	for i, e := range b.edits {
		edits[i] = queued{Edit: e, seq: i}
	}
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].Start != edits[j].Start {
			return edits[i].Start > edits[j].Start
		}
		if edits[i].End != edits[j].End {
			return edits[i].End > edits[j].End
		}
		return edits[i].seq > edits[j].seq
	})

	out := b.src
	limit := len(b.src)
	for _, e := range edits {
		if e.Start < 0 || e.End < e.Start || e.End > len(b.src) {
			return "", errors.Errorf("edit [%d,%d) out of range for text of length %d", e.Start, e.End, len(b.src))
		}
		if e.End > limit {
			return "", errors.Errorf("%w: [%d,%d) runs into an edit at %d", ErrOverlap, e.Start, e.End, limit)
		}
		out = out[:e.Start] + e.NewText + out[e.End:]
		limit = e.Start
	}
	return out, nil
}
