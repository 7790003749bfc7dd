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

package imports

import (
	"strings"
)

// 📥 Named is one entry of a braced import clause
type Named struct {
	Imported string // Exported name in the module
	Local    string // Binding in this file
	Type     bool   // Inline type modifier
}

// String renders the entry as it appears inside braces
func (n Named) String() string {
	s := n.Imported
	if n.Local != "" && n.Local != n.Imported {
		s += " as " + n.Local
	}
	if n.Type {
		s = "type " + s
	}
	return s
}

// 📄 Declaration is one static import statement
type Declaration struct {
	Start     int    // Offset of the start of the line holding the statement
	End       int    // Offset past the statement's trailing newline
	StmtStart int    // Offset of the import keyword
	StmtEnd   int    // Offset past the statement's last character
	Specifier string // Module specifier without quotes
	Quote     byte   // Quote character used around the specifier
	TypeOnly  bool   // import type ...
	Default   string // Default binding
	Namespace string // Namespace binding (* as X)
	Named     []Named
	Braces    bool // Whether a braced clause is present
	Semicolon bool
	OwnsLine  bool // Nothing else shares the statement's lines
}

// Bindings returns every local name the declaration introduces
func (d Declaration) Bindings() []string {
	var out []string
	if d.Default != "" {
		out = append(out, d.Default)
	}
	if d.Namespace != "" {
		out = append(out, d.Namespace)
	}
	for _, n := range d.Named {
		out = append(out, n.Local)
	}
	return out
}

// Render returns the statement text for the declaration
func (d Declaration) Render() string {
	var sb strings.Builder
	sb.WriteString("import ")
	if d.TypeOnly {
		sb.WriteString("type ")
	}

	var clause []string
	if d.Default != "" {
		clause = append(clause, d.Default)
	}
	if d.Namespace != "" {
		clause = append(clause, "* as "+d.Namespace)
	}
	if len(d.Named) > 0 {
		names := make([]string, len(d.Named))
		for i, n := range d.Named {
			names[i] = n.String()
		}
		clause = append(clause, "{ "+strings.Join(names, ", ")+" }")
	}
	if len(clause) > 0 {
		sb.WriteString(strings.Join(clause, ", "))
		sb.WriteString(" from ")
	}

	q := d.Quote
	if q == 0 {
		q = '"'
	}
	sb.WriteByte(q)
	sb.WriteString(d.Specifier)
	sb.WriteByte(q)
	if d.Semicolon {
		sb.WriteByte(';')
	}
	return sb.String()
}

// 🔍 Parse returns the static import declarations of src in textual order.
// Only statements that begin a line are considered; lines inside block
// comments are skipped. Statements it cannot read are ignored.
func Parse(src string) []Declaration {
	var decls []Declaration
	inComment := false

	for lineStart := 0; lineStart < len(src); {
		lineEnd := strings.IndexByte(src[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(src)
		} else {
			lineEnd += lineStart
		}
		line := src[lineStart:lineEnd]

		if inComment {
			if strings.Contains(line, "*/") {
				inComment = false
			}
			lineStart = lineEnd + 1
			continue
		}

		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "/*") && !strings.Contains(trimmed[2:], "*/") {
			inComment = true
			lineStart = lineEnd + 1
			continue
		}

		if isImportStart(trimmed) {
			stmt := lineStart + len(line) - len(trimmed)
			if d, ok := parseDeclaration(src, stmt); ok {
				d.Start = lineStart
				decls = append(decls, d)
				lineStart = d.End
				continue
			}
		}
		lineStart = lineEnd + 1
	}
	return decls
}

func isImportStart(s string) bool {
	if !strings.HasPrefix(s, "import") || len(s) == len("import") {
		return false
	}
	switch s[len("import")] {
	case ' ', '\t', '{', '*', '"', '\'':
		return true
	}
	return false
}

type cursor struct {
	src string
	pos int
}

func (c *cursor) skipSpace() {
	for c.pos < len(c.src) {
		switch c.src[c.pos] {
		case ' ', '\t', '\n', '\r':
			c.pos++
		default:
			return
		}
	}
}

func (c *cursor) ident() string {
	start := c.pos
	for c.pos < len(c.src) && isIdent(c.src[c.pos]) {
		c.pos++
	}
	return c.src[start:c.pos]
}

func (c *cursor) keyword(kw string) bool {
	if !strings.HasPrefix(c.src[c.pos:], kw) {
		return false
	}
	end := c.pos + len(kw)
	if end < len(c.src) && isIdent(c.src[end]) {
		return false
	}
	c.pos = end
	return true
}

func (c *cursor) peek() byte {
	if c.pos >= len(c.src) {
		return 0
	}
	return c.src[c.pos]
}

func (c *cursor) quoted() (string, byte, bool) {
	q := c.peek()
	if q != '"' && q != '\'' {
		return "", 0, false
	}
	end := strings.IndexByte(c.src[c.pos+1:], q)
	if end < 0 {
		return "", 0, false
	}
	s := c.src[c.pos+1 : c.pos+1+end]
	if strings.ContainsRune(s, '\n') {
		return "", 0, false
	}
	c.pos += end + 2
	return s, q, true
}

func parseDeclaration(src string, at int) (Declaration, bool) {
	d := Declaration{StmtStart: at}
	c := &cursor{src: src, pos: at}
	c.keyword("import")
	c.skipSpace()

	if save := c.pos; c.keyword("type") {
		c.skipSpace()
		if c.keyword("from") || c.peek() == ',' {
			// "type" is the default binding
			c.pos = save
		} else {
			d.TypeOnly = true
		}
	}

	if spec, q, ok := c.quoted(); ok {
		d.Specifier, d.Quote = spec, q
		return finishDeclaration(d, c)
	}

	for {
		c.skipSpace()
		switch {
		case c.peek() == '{':
			end := strings.IndexByte(src[c.pos:], '}')
			if end < 0 {
				return d, false
			}
			named, ok := parseNamed(src[c.pos+1 : c.pos+end])
			if !ok {
				return d, false
			}
			d.Named = named
			d.Braces = true
			c.pos += end + 1
		case c.peek() == '*':
			c.pos++
			c.skipSpace()
			if !c.keyword("as") {
				return d, false
			}
			c.skipSpace()
			if d.Namespace = c.ident(); d.Namespace == "" {
				return d, false
			}
		default:
			name := c.ident()
			if name == "" {
				return d, false
			}
			d.Default = name
		}

		c.skipSpace()
		if c.peek() == ',' {
			c.pos++
			continue
		}
		break
	}

	if !c.keyword("from") {
		return d, false
	}
	c.skipSpace()
	spec, q, ok := c.quoted()
	if !ok {
		return d, false
	}
	d.Specifier, d.Quote = spec, q
	return finishDeclaration(d, c)
}

func finishDeclaration(d Declaration, c *cursor) (Declaration, bool) {
	p := c.pos
	for p < len(c.src) && (c.src[p] == ' ' || c.src[p] == '\t') {
		p++
	}
	// import attributes are not rewritten, so statements carrying them are left alone
	if strings.HasPrefix(c.src[p:], "with") || strings.HasPrefix(c.src[p:], "assert") {
		return d, false
	}
	if p < len(c.src) && c.src[p] == ';' {
		d.Semicolon = true
		p++
	}
	d.StmtEnd = p

	for p < len(c.src) && (c.src[p] == ' ' || c.src[p] == '\t' || c.src[p] == '\r') {
		p++
	}
	switch {
	case p >= len(c.src):
		d.End, d.OwnsLine = p, true
	case c.src[p] == '\n':
		d.End, d.OwnsLine = p+1, true
	default:
		// something else shares the line; only the statement itself is owned
		d.End = d.StmtEnd
	}
	return d, true
}

func parseNamed(body string) ([]Named, bool) {
	var out []Named
	for _, part := range strings.Split(body, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		n := Named{}
		if fields[0] == "type" && len(fields) > 1 && fields[1] != "as" {
			n.Type = true
			fields = fields[1:]
		}
		switch len(fields) {
		case 1:
			n.Imported, n.Local = fields[0], fields[0]
		case 3:
			if fields[1] != "as" {
				return nil, false
			}
			n.Imported, n.Local = fields[0], fields[2]
		default:
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func isIdent(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
