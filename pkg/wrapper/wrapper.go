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

// Package wrapper swaps the root element of a return expression for a
// wrapper component's opening tag. The matching closing tag is left for the
// balance package to resolve structurally.
package wrapper

import (
	"strings"

	"github.com/walteh/pagemod/pkg/edit"
	"github.com/walteh/pagemod/pkg/markup"
	"gitlab.com/tozd/go/errors"
)

// 🎯 RootPattern identifies the root element to replace
type RootPattern struct {
	Tag    string // Element name of the root, e.g. div
	Marker string // Fixed substring the root's opening tag must contain
}

// 📦 Result describes one injection attempt
type Result struct {
	Text      string // Resulting text, identical to the input when not applied
	Applied   bool   // False means the pattern was not found
	Ambiguous bool   // More than one return expression matched; only the first was changed
	Matches   int    // Number of matching return expressions
}

// 🔧 Inject replaces the opening tag of the first return expression whose
// immediate root matches pattern with wrapperOpen. A self-closing root is
// replaced by wrapperOpen followed by wrapperClose.
func Inject(src string, pattern RootPattern, wrapperOpen, wrapperClose string) (Result, error) {
	res := Result{Text: src}

	if pattern.Tag == "" {
		return res, errors.Errorf("root pattern tag is required")
	}
	if markup.TagName(wrapperOpen) == "" {
		return res, errors.Errorf("wrapper open tag %q is not a tag", wrapperOpen)
	}

	// pattern absent, nothing to scan
	if !strings.Contains(src, "<"+pattern.Tag) || !strings.Contains(src, pattern.Marker) {
		return res, nil
	}

	regions, err := markup.Regions(src)
	if err != nil {
		return res, errors.Errorf("scanning return expressions: %w", err)
	}

	var matches []markup.Span
	for _, r := range regions {
		idx, ok := r.Root(src)
		if !ok {
			continue
		}
		root := r.Spans[idx]
		if root.Name != pattern.Tag {
			continue
		}
		if !strings.Contains(src[root.Start:root.End], pattern.Marker) {
			continue
		}
		matches = append(matches, root)
	}

	res.Matches = len(matches)
	if len(matches) == 0 {
		return res, nil
	}

	root := matches[0]
	replacement := wrapperOpen
	if root.Kind == markup.SelfClosing {
		replacement += wrapperClose
	}

	buf := edit.NewBuffer(src)
	buf.Replace(root.Start, root.End, replacement)
	out, err := buf.Apply()
	if err != nil {
		return Result{Text: src}, errors.Errorf("applying wrapper: %w", err)
	}

	res.Text = out
	res.Applied = true
	res.Ambiguous = len(matches) > 1
	return res, nil
}
