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
)

const classAttr = `className="`

// 🧹 CollapseRepeatedClasses rewrites literal className strings in which a
// run of class tokens is immediately repeated, keeping one copy:
// "p-6 md:p-8 p-6 md:p-8" becomes "p-6 md:p-8". Strings without a repeat are
// left byte for byte. Returns the new text and the number of strings changed.
func CollapseRepeatedClasses(src string) (string, int) {
	buf := edit.NewBuffer(src)
	for i := 0; ; {
		at := strings.Index(src[i:], classAttr)
		if at < 0 {
			break
		}
		start := i + at
		valStart := start + len(classAttr)
		i = valStart
		if start > 0 && !isBreak(src[start-1]) {
			continue
		}
		valLen := strings.IndexByte(src[valStart:], '"')
		if valLen < 0 {
			break
		}
		i = valStart + valLen + 1

		tokens, changed := collapse(strings.Fields(src[valStart : valStart+valLen]))
		if changed {
			buf.Replace(valStart, valStart+valLen, strings.Join(tokens, " "))
		}
	}

	n := buf.Len()
	out, err := buf.Apply()
	if err != nil {
		return src, 0
	}
	return out, n
}

// collapse removes immediately repeated runs of tokens until none remain.
func collapse(tokens []string) ([]string, bool) {
	changed := false
	for again := true; again; {
		again = false
		for size := 1; size <= len(tokens)/2; size++ {
			for i := 0; i+2*size <= len(tokens); {
				if !equalRun(tokens[i:i+size], tokens[i+size:i+2*size]) {
					i++
					continue
				}
				next := make([]string, 0, len(tokens)-size)
				next = append(next, tokens[:i+size]...)
				next = append(next, tokens[i+2*size:]...)
				tokens = next
				changed, again = true, true
			}
		}
	}
	return tokens, changed
}

func equalRun(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isBreak(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
