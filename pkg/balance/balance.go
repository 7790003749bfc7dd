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

package balance

import (
	"strings"

	"github.com/walteh/pagemod/pkg/edit"
	"github.com/walteh/pagemod/pkg/markup"
	"gitlab.com/tozd/go/errors"
)

// 📦 Result describes one balancing pass
type Result struct {
	Text      string // Resulting text
	Promoted  int    // Closing tags rewritten to the wrapper's closing tag
	Collapsed int    // Class strings whose repeated tokens were collapsed
}

// ⚖️ Balance repairs return expressions that open wrapperTag more often than
// they close it. Within each region, every closing tagName that is the
// structural partner of an open wrapperTag is a candidate; candidates are
// promoted to the wrapper's closing tag last-first until the region's
// wrapper count balances.
//
// Regions are handled one at a time. If any region cannot be repaired, or
// the repaired text still pairs a wrapper tag with a differently named tag
// anywhere in the file, the text is returned unchanged together with an
// error wrapping markup.ErrStructuralDefect. Repeated class tokens are collapsed afterwards
// in every case where balancing succeeded.
func Balance(src, tagName, wrapperTag string) (Result, error) {
	res := Result{Text: src}

	if wrapperTag == "" || tagName == "" {
		return res, errors.Errorf("tag and wrapper tag names are required")
	}

	if strings.Contains(src, "<"+wrapperTag) {
		regions, err := markup.Regions(src)
		if err != nil {
			return res, errors.Errorf("scanning return expressions: %w", err)
		}

		buf := edit.NewBuffer(src)
		for i, r := range regions {
			promoted, err := balanceRegion(buf, r, tagName, wrapperTag)
			if err != nil {
				return Result{Text: src}, errors.Errorf("return expression %d at offset %d: %w", i, r.Start, err)
			}
			res.Promoted += promoted
		}

		out, err := buf.Apply()
		if err != nil {
			return Result{Text: src}, errors.Errorf("applying promotions: %w", err)
		}
		if err := verifyFile(out, wrapperTag); err != nil {
			return Result{Text: src}, err
		}
		res.Text = out
	}

	res.Text, res.Collapsed = CollapseRepeatedClasses(res.Text)
	return res, nil
}

func balanceRegion(buf *edit.Buffer, r markup.Region, tagName, wrapperTag string) (int, error) {
	pending := r.Balance(wrapperTag)
	if pending < 0 {
		return 0, errors.Errorf("%w: %d more </%s> than <%s>", markup.ErrStructuralDefect, -pending, wrapperTag, wrapperTag)
	}

	promoted := make(map[int]bool)
	if pending > 0 {
		var candidates []int
		for j, sp := range r.Spans {
			if sp.Kind != markup.Close || sp.Name != tagName || sp.Pair < 0 {
				continue
			}
			if open := r.Spans[sp.Pair]; open.Kind == markup.Open && open.Name == wrapperTag {
				candidates = append(candidates, j)
			}
		}

		for k := len(candidates) - 1; k >= 0 && pending > 0; k-- {
			promoted[candidates[k]] = true
			pending--
		}
		if pending > 0 {
			return 0, errors.Errorf("%w: %d unclosed <%s> with no </%s> to promote", markup.ErrStructuralDefect, pending, wrapperTag, tagName)
		}
	}

	if err := verifyPairs(r, wrapperTag, promoted); err != nil {
		return 0, err
	}

	for j := range promoted {
		sp := r.Spans[j]
		buf.Replace(sp.Start, sp.End, markup.CloseTag(wrapperTag))
	}
	return len(promoted), nil
}

// verifyPairs checks that, once the promotions are applied, every element
// pair involving wrapperTag has matching names.
func verifyPairs(r markup.Region, wrapperTag string, promoted map[int]bool) error {
	for j, sp := range r.Spans {
		if sp.Kind != markup.Close || sp.Pair < 0 {
			continue
		}
		closeName := sp.Name
		if promoted[j] {
			closeName = wrapperTag
		}
		openName := r.Spans[sp.Pair].Name
		if openName == closeName {
			continue
		}
		if openName == wrapperTag || closeName == wrapperTag {
			return errors.Errorf("%w: <%s> at offset %d is closed by </%s> at offset %d",
				markup.ErrStructuralDefect, openName, r.Spans[sp.Pair].Start, closeName, sp.Start)
		}
	}
	return nil
}

// verifyFile checks wrapper pairs across the whole text, including markup
// outside return expressions such as arrow function bodies.
func verifyFile(text, wrapperTag string) error {
	spans, err := markup.Elements(text)
	if err != nil {
		return errors.Errorf("scanning markup: %w", err)
	}
	if err := verifyPairs(markup.Region{Spans: spans}, wrapperTag, nil); err != nil {
		return errors.Errorf("outside return expressions: %w", err)
	}
	return nil
}
