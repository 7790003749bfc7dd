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

// 🔎 Regions scans src and returns every top-level return expression whose
// value is markup, together with the tags found inside it.
//
// The scan is lexical: it tracks string, template and regex literals,
// comments, bracket nesting, and element nesting, but it does not build a
// syntax tree. Closing tags pair with the innermost open element regardless
// of name, so a pairing like <A>...</div> is reported as-is for callers to
// judge. Returns run inside an outer region belong to that region.
func Regions(src string) ([]Region, error) {
	s := &scanner{src: src}
	if err := s.scanJS(0); err != nil {
		return nil, err
	}
	return s.regions, nil
}

// 🔎 Elements scans src and returns every tag in it, whether or not it sits
// inside a return expression. Depth is relative to the outermost element and
// Pair indexes into the returned slice.
func Elements(src string) ([]Span, error) {
	s := &scanner{src: src, all: true}
	if err := s.scanJS(0); err != nil {
		return nil, err
	}
	return s.spans, nil
}

// 🧹 Code returns src with comments, string and template text, regex
// literals and markup text replaced by spaces. Tag names, attribute names
// and embedded expressions are kept. Offsets and line breaks are preserved.
// On a scan error src is returned unchanged with the error.
func Code(src string) (string, error) {
	s := &scanner{src: src, all: true, mask: true}
	if err := s.scanJS(0); err != nil {
		return src, err
	}
	out := []byte(src)
	for _, r := range s.hidden {
		for i := r[0]; i < r[1] && i < len(out); i++ {
			if out[i] != '\n' {
				out[i] = ' '
			}
		}
	}
	return string(out), nil
}

type scanner struct {
	src      string
	pos      int
	regions  []Region
	inRegion bool
	all      bool // record tags everywhere and skip region bookkeeping
	mask     bool // collect non-code ranges into hidden
	hidden   [][2]int
	depth    int
	spans    []Span
}

func (s *scanner) hide(start, end int) {
	if s.mask && end > start {
		s.hidden = append(s.hidden, [2]int{start, end})
	}
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek(off int) byte {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

func (s *scanner) unterminated(what string, at int) error {
	return errors.Errorf("%w: %s starting at offset %d", ErrUnterminated, what, at)
}

// markupFollows reports whether '<' at the current position opens an element
// given the previous significant character and word.
func (s *scanner) markupFollows(prev byte, prevWord string) bool {
	next := s.peek(1)
	if !isNameStart(next) && next != '>' {
		return false
	}
	switch prevWord {
	case "return", "yield", "default", "case":
		return true
	}
	return prev == 0 || strings.IndexByte("(,=:?&|{[!;}>", prev) >= 0
}

func regexFollows(prev byte, prevWord string) bool {
	if prevWord == "return" || prevWord == "typeof" || prevWord == "case" {
		return true
	}
	return prev == 0 || strings.IndexByte("(,=:[!&|?{};", prev) >= 0
}

// scanJS consumes script text until stop is found at nesting level zero.
// A zero stop scans to the end of the text.
func (s *scanner) scanJS(stop byte) error {
	begin := s.pos
	nest := 0
	var prev byte
	prevWord := ""

	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case isSpace(c):
			s.pos++
			continue

		case c == '/' && s.peek(1) == '/':
			at := s.pos
			for !s.eof() && s.src[s.pos] != '\n' {
				s.pos++
			}
			s.hide(at, s.pos)
			continue

		case c == '/' && s.peek(1) == '*':
			at := s.pos
			end := strings.Index(s.src[s.pos+2:], "*/")
			if end < 0 {
				return s.unterminated("comment", at)
			}
			s.pos += end + 4
			s.hide(at, s.pos)
			continue

		case c == '"' || c == '\'':
			if err := s.skipQuoted(c, true); err != nil {
				return err
			}
			prev, prevWord = ')', ""

		case c == '`':
			if err := s.skipTemplate(); err != nil {
				return err
			}
			prev, prevWord = ')', ""

		case c == '/' && regexFollows(prev, prevWord):
			at := s.pos
			if err := s.skipRegex(); err != nil {
				return err
			}
			s.hide(at, s.pos)
			prev, prevWord = ')', ""

		case c == '<' && s.markupFollows(prev, prevWord):
			if err := s.scanElement(); err != nil {
				return err
			}
			prev, prevWord = ')', ""

		case isNameStart(c):
			start := s.pos
			for !s.eof() && isIdentChar(s.src[s.pos]) {
				s.pos++
			}
			word := s.src[start:s.pos]
			if word == "return" && !s.inRegion && !s.all {
				ok, err := s.scanRegion(start)
				if err != nil {
					return err
				}
				if ok {
					prev, prevWord = ')', ""
					continue
				}
			}
			prev, prevWord = word[len(word)-1], word
			continue

		case c == '(' || c == '[' || c == '{':
			nest++
			s.pos++
			prev, prevWord = c, ""
			continue

		case c == ')' || c == ']' || c == '}':
			if nest == 0 {
				if stop != 0 && c == stop {
					return nil
				}
				if stop != 0 {
					return errors.Errorf("%w: unexpected %q at offset %d", ErrStructuralDefect, c, s.pos)
				}
				// stray closer at file level, nothing to pair it with
				s.pos++
				prev, prevWord = c, ""
				continue
			}
			nest--
			s.pos++
			prev, prevWord = c, ""
			continue

		default:
			s.pos++
			prev, prevWord = c, ""
			continue
		}
	}

	if stop != 0 {
		return s.unterminated("expression", begin)
	}
	return nil
}

// scanRegion is called just past a return keyword. It records a region when
// the returned value is a parenthesized expression or a bare element.
func (s *scanner) scanRegion(start int) (bool, error) {
	p := s.pos
	for p < len(s.src) && isSpace(s.src[p]) {
		p++
	}
	if p >= len(s.src) {
		return false, nil
	}
	isParen := s.src[p] == '('
	isElem := s.src[p] == '<' && p+1 < len(s.src) && (isNameStart(s.src[p+1]) || s.src[p+1] == '>')
	if !isParen && !isElem {
		return false, nil
	}

	s.pos = p
	s.inRegion = true
	s.depth = 0
	s.spans = nil
	defer func() {
		s.inRegion = false
		s.spans = nil
	}()

	if isParen {
		s.pos++
		if err := s.scanJS(')'); err != nil {
			return false, err
		}
		if s.eof() {
			return false, s.unterminated("return expression", start)
		}
		s.pos++
	} else {
		if err := s.scanElement(); err != nil {
			return false, err
		}
	}

	end := s.pos
	q := end
	for q < len(s.src) && (s.src[q] == ' ' || s.src[q] == '\t') {
		q++
	}
	if q < len(s.src) && s.src[q] == ';' {
		end = q + 1
	}
	s.pos = end

	s.regions = append(s.regions, Region{
		Start: start,
		Body:  p,
		End:   end,
		Spans: s.spans,
	})
	return true, nil
}

func (s *scanner) readName() string {
	start := s.pos
	for !s.eof() && isNameChar(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

func (s *scanner) record(sp Span) int {
	if !s.inRegion && !s.all {
		return -1
	}
	sp.Pair = -1
	s.spans = append(s.spans, sp)
	return len(s.spans) - 1
}

// scanElement consumes one element starting at '<', including its children
// and closing tag.
func (s *scanner) scanElement() error {
	start := s.pos
	s.pos++
	name := s.readName()

	for {
		if s.eof() {
			return s.unterminated("tag <"+name, start)
		}
		c := s.src[s.pos]
		switch {
		case c == '"' || c == '\'':
			if err := s.skipQuoted(c, false); err != nil {
				return err
			}
			continue
		case c == '{':
			s.pos++
			if err := s.scanJS('}'); err != nil {
				return err
			}
			if s.eof() {
				return s.unterminated("attribute expression", start)
			}
			s.pos++
			continue
		case c == '/' && s.peek(1) == '>':
			s.pos += 2
			s.record(Span{Name: name, Kind: SelfClosing, Start: start, End: s.pos, Depth: s.depth})
			return nil
		case c == '>':
			s.pos++
		default:
			s.pos++
			continue
		}
		break
	}

	open := s.record(Span{Name: name, Kind: Open, Start: start, End: s.pos, Depth: s.depth})
	s.depth++
	return s.scanChildren(open, name, start)
}

func (s *scanner) scanChildren(open int, name string, start int) error {
	text := s.pos
	for {
		if s.eof() {
			return s.unterminated("element <"+name+">", start)
		}
		c := s.src[s.pos]
		if c == '{' || c == '<' {
			s.hide(text, s.pos)
		}
		switch {
		case c == '{':
			s.pos++
			if err := s.scanJS('}'); err != nil {
				return err
			}
			if s.eof() {
				return s.unterminated("child expression", start)
			}
			s.pos++
			text = s.pos
		case c == '<' && s.peek(1) == '/':
			closeStart := s.pos
			s.pos += 2
			for !s.eof() && isSpace(s.src[s.pos]) {
				s.pos++
			}
			closeName := s.readName()
			for !s.eof() && s.src[s.pos] != '>' {
				s.pos++
			}
			if s.eof() {
				return s.unterminated("closing tag </"+closeName, closeStart)
			}
			s.pos++
			s.depth--
			idx := s.record(Span{Name: closeName, Kind: Close, Start: closeStart, End: s.pos, Depth: s.depth})
			if idx >= 0 && open >= 0 {
				s.spans[open].Pair = idx
				s.spans[idx].Pair = open
			}
			return nil
		case c == '<' && (isNameStart(s.peek(1)) || s.peek(1) == '>'):
			if err := s.scanElement(); err != nil {
				return err
			}
			text = s.pos
		default:
			s.pos++
		}
	}
}

func (s *scanner) skipQuoted(q byte, escapes bool) error {
	start := s.pos
	s.pos++
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case escapes && c == '\\':
			s.pos += 2
			continue
		case c == q:
			s.pos++
			s.hide(start, s.pos)
			return nil
		case escapes && c == '\n':
			return s.unterminated("string", start)
		}
		s.pos++
	}
	return s.unterminated("string", start)
}

func (s *scanner) skipTemplate() error {
	start := s.pos
	text := s.pos
	s.pos++
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == '\\':
			s.pos += 2
			continue
		case c == '`':
			s.pos++
			s.hide(text, s.pos)
			return nil
		case c == '$' && s.peek(1) == '{':
			s.hide(text, s.pos)
			s.pos += 2
			if err := s.scanJS('}'); err != nil {
				return err
			}
			if s.eof() {
				return s.unterminated("template substitution", start)
			}
			text = s.pos + 1
		}
		s.pos++
	}
	return s.unterminated("template literal", start)
}

func (s *scanner) skipRegex() error {
	start := s.pos
	s.pos++
	inClass := false
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == '\\':
			s.pos += 2
			continue
		case c == '\n':
			return s.unterminated("regular expression", start)
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			s.pos++
			return nil
		}
		s.pos++
	}
	return s.unterminated("regular expression", start)
}
