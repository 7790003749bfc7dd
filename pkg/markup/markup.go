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

package markup

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrStructuralDefect marks a tag balance or nesting condition that cannot be repaired safely.
	ErrStructuralDefect = errors.Base("structural defect")

	// ErrUnterminated is returned when a region, tag or literal runs past the end of the text.
	ErrUnterminated = errors.Base("unterminated construct")
)

// 🏷️ Kind classifies a tag occurrence
type Kind int

const (
	Open Kind = iota
	Close
	SelfClosing
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case Open:
		return "open"
	case Close:
		return "close"
	case SelfClosing:
		return "self-closing"
	default:
		return "unknown"
	}
}

// 📍 Span is one located occurrence of a tag
type Span struct {
	Name  string // Tag name, empty for fragments
	Kind  Kind   // Open, Close or SelfClosing
	Start int    // Offset of '<'
	End   int    // Offset just past '>'
	Depth int    // Nesting level relative to the region root
	Pair  int    // Index of the structural partner in Region.Spans, -1 when none
}

// 📦 Region is one bounded return expression
type Region struct {
	Start int    // Offset of the return keyword
	Body  int    // Offset of the root expression ('(' or '<')
	End   int    // Offset just past the terminating ')' and optional ';'
	Spans []Span // Every tag inside the region, in textual order
}

// 🌳 Root returns the index of the immediate root element of the region.
// A parenthesized region only has a root when nothing but whitespace
// separates the '(' from the first tag.
func (r Region) Root(src string) (int, bool) {
	if len(r.Spans) == 0 {
		return -1, false
	}
	first := r.Spans[0]
	if first.Kind == Close || first.Depth != 0 {
		return -1, false
	}
	lead := src[r.Body:first.Start]
	if strings.HasPrefix(lead, "(") {
		lead = lead[1:]
	}
	if strings.TrimSpace(lead) != "" {
		return -1, false
	}
	return 0, true
}

// 🔢 Count returns the number of spans with the given name and kind
func (r Region) Count(name string, kind Kind) int {
	n := 0
	for _, sp := range r.Spans {
		if sp.Name == name && sp.Kind == kind {
			n++
		}
	}
	return n
}

// ⚖️ Balance returns opening minus closing occurrences of name in the region
func (r Region) Balance(name string) int {
	return r.Count(name, Open) - r.Count(name, Close)
}

// 🔍 TagName extracts the element name from a literal tag such as
// "<PremiumPageLayout>", "</PremiumPageLayout>" or "<Box className=\"x\">".
func TagName(tag string) string {
	tag = strings.TrimSpace(tag)
	if !strings.HasPrefix(tag, "<") {
		return ""
	}
	tag = strings.TrimPrefix(tag[1:], "/")
	end := 0
	for end < len(tag) && isNameChar(tag[end]) {
		end++
	}
	return tag[:end]
}

// CloseTag renders the closing tag for name
func CloseTag(name string) string {
	return "</" + name + ">"
}

func isNameStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '.' || c == ':' || c == '-'
}

func isIdentChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// IsIdentBoundary reports whether the word at src[start:end] is not part of a larger identifier
func IsIdentBoundary(src string, start, end int) bool {
	if start > 0 && isIdentChar(src[start-1]) {
		return false
	}
	if end < len(src) && isIdentChar(src[end]) {
		return false
	}
	return true
}
