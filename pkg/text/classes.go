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
	"strings"

	"github.com/walteh/pagemod/pkg/edit"
)

const classAttr = `className="`

// ClassAppend adds classes to the literal className of every opening tag named Tag
type ClassAppend struct {
	Tag     string `json:"tag" yaml:"tag"`
	Classes string `json:"classes" yaml:"classes"`
}

// ➕ AppendClasses adds each configured class that is missing from the
// literal className of a matching tag. Classes already present are left
// alone, so applying the same rule twice changes nothing. Returns the new
// text and the number of tags touched.
func AppendClasses(src string, appends []ClassAppend) (string, int) {
	touched := 0
	for _, ap := range appends {
		want := strings.Fields(ap.Classes)
		if ap.Tag == "" || len(want) == 0 {
			continue
		}

		buf := edit.NewBuffer(src)
		n := 0
		open := "<" + ap.Tag
		for i := 0; ; {
			at := strings.Index(src[i:], open)
			if at < 0 {
				break
			}
			start := i + at
			i = start + len(open)
			if i >= len(src) || !isTagBreak(src[i]) {
				continue
			}
			gt := strings.IndexByte(src[i:], '>')
			if gt < 0 {
				break
			}
			tag := src[i : i+gt]
			attr := strings.Index(tag, classAttr)
			if attr < 0 || (attr > 0 && !isTagBreak(tag[attr-1])) {
				continue
			}
			valStart := i + attr + len(classAttr)
			valLen := strings.IndexByte(src[valStart:i+gt], '"')
			if valLen < 0 {
				continue
			}
			value := src[valStart : valStart+valLen]

			missing := missingClasses(value, want)
			if len(missing) == 0 {
				continue
			}
			insert := strings.Join(missing, " ")
			if strings.TrimSpace(value) != "" && !strings.HasSuffix(value, " ") {
				insert = " " + insert
			}
			buf.Insert(valStart+valLen, insert)
			n++
		}

		out, err := buf.Apply()
		if err != nil {
			continue
		}
		src = out
		touched += n
	}
	return src, touched
}

func missingClasses(value string, want []string) []string {
	have := make(map[string]bool)
	for _, c := range strings.Fields(value) {
		have[c] = true
	}
	var missing []string
	for _, c := range want {
		if !have[c] {
			missing = append(missing, c)
			have[c] = true
		}
	}
	return missing
}

func isTagBreak(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
