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

package text

import (
	"context"
	"io"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrInvalidRule is returned by ValidateRules
var ErrInvalidRule = errors.Base("invalid rule")

// TokenRewriter implements Rewriter using ordered literal replacement
type TokenRewriter struct{}

// NewTokenRewriter creates a new TokenRewriter
func NewTokenRewriter() *TokenRewriter {
	return &TokenRewriter{}
}

// Rewrite implements Rewriter.Rewrite
func (r *TokenRewriter) Rewrite(ctx context.Context, content io.Reader, rules []Rule) (*Result, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	modified, count := RewriteString(string(originalContent), rules)

	return &Result{
		WasModified:      count > 0 && modified != string(originalContent),
		ReplacementCount: count,
		OriginalContent:  originalContent,
		ModifiedContent:  []byte(modified),
	}, nil
}

// ValidateRules implements Rewriter.ValidateRules
func (r *TokenRewriter) ValidateRules(rules []Rule) error {
	for i, rule := range rules {
		if rule.FromText == "" {
			return errors.Errorf("%w: rule %d: from is required", ErrInvalidRule, i)
		}
		if !sameShape(rule.FromText, rule.ToText) {
			return errors.Errorf("%w: rule %d: %q -> %q changes tag structure", ErrInvalidRule, i, rule.FromText, rule.ToText)
		}
		for j := 0; j < i; j++ {
			if rule.Rescan {
				break
			}
			if strings.Contains(rule.FromText, rules[j].FromText) {
				return errors.Errorf("%w: rule %d (%q) is shadowed by earlier rule %d (%q)", ErrInvalidRule, i, rule.FromText, j, rules[j].FromText)
			}
		}
	}
	return nil
}

// sameShape reports whether two literals carry the same tag punctuation,
// which keeps every rule tag-for-tag.
func sameShape(a, b string) bool {
	for _, tok := range []string{"</", "/>", "<", ">"} {
		if strings.Count(a, tok) != strings.Count(b, tok) {
			return false
		}
	}
	return true
}

type segment struct {
	text string
	done bool // produced by a rule
}

// 🔄 RewriteString applies each rule once, in order, as a global literal
// replacement. Text produced by an earlier rule is not matched again unless
// the later rule sets Rescan.
func RewriteString(src string, rules []Rule) (string, int) {
	segs := []segment{{text: src}}
	count := 0

	for _, rule := range rules {
		// Skip empty rules
		if rule.FromText == "" {
			continue
		}

		next := make([]segment, 0, len(segs))
		for k, sg := range segs {
			if (sg.done && !rule.Rescan) || !strings.Contains(sg.text, rule.FromText) {
				next = append(next, sg)
				continue
			}
			var parts []string
			if rule.WholeClass {
				parts = splitClassTokens(sg.text, rule.FromText, lastByte(segs[:k]), firstByte(segs[k+1:]))
			} else {
				parts = strings.Split(sg.text, rule.FromText)
			}
			for i, part := range parts {
				if i > 0 {
					next = append(next, segment{text: rule.ToText, done: true})
					count++
				}
				if part != "" {
					next = append(next, segment{text: part, done: sg.done})
				}
			}
		}
		segs = next
	}

	var sb strings.Builder
	sb.Grow(len(src))
	for _, sg := range segs {
		sb.WriteString(sg.text)
	}
	return sb.String(), count
}

// splitClassTokens splits text around the occurrences of tok that stand as
// a whole class token. before and after are the bytes surrounding text, 0 at
// the ends of the input.
func splitClassTokens(text, tok string, before, after byte) []string {
	var parts []string
	last := 0
	for i := 0; i < len(text); {
		at := strings.Index(text[i:], tok)
		if at < 0 {
			break
		}
		start, end := i+at, i+at+len(tok)
		prev, next := before, after
		if start > 0 {
			prev = text[start-1]
		}
		if end < len(text) {
			next = text[end]
		}
		if !classBoundary(prev, ":!") || !classBoundary(next, "/") {
			i = start + 1
			continue
		}
		parts = append(parts, text[last:start])
		last, i = end, end
	}
	return append(parts, text[last:])
}

// classBoundary reports whether c can sit next to a class token
func classBoundary(c byte, extra string) bool {
	if c == 0 || strings.IndexByte(extra, c) >= 0 {
		return true
	}
	return strings.IndexByte(" \t\r\n\"'`{}", c) >= 0
}

func lastByte(segs []segment) byte {
	for k := len(segs) - 1; k >= 0; k-- {
		if t := segs[k].text; t != "" {
			return t[len(t)-1]
		}
	}
	return 0
}

func firstByte(segs []segment) byte {
	for _, sg := range segs {
		if sg.text != "" {
			return sg.text[0]
		}
	}
	return 0
}
