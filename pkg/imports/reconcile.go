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
	"slices"
	"strings"

	"github.com/walteh/pagemod/pkg/edit"
	"github.com/walteh/pagemod/pkg/markup"
	"gitlab.com/tozd/go/errors"
)

// 📜 Rule governs the import of a set of symbols from one specifier
type Rule struct {
	Specifier string   `json:"specifier" yaml:"specifier"`
	Symbols   []string `json:"symbols" yaml:"symbols"`                   // Canonical order for inserted declarations
	Anchor    string   `json:"anchor,omitempty" yaml:"anchor,omitempty"` // Specifier of the import to insert after
	Prune     bool     `json:"prune,omitempty" yaml:"prune,omitempty"`   // Drop governed symbols the body no longer uses
}

// 📦 Result describes one reconciliation
type Result struct {
	Text     string
	Inserted bool     // A new declaration was added
	Added    []string // Symbols added to an existing or new declaration
	Pruned   []string // Governed symbols dropped because the body no longer uses them
	Merged   int      // Duplicate declarations folded into the first
	Removed  int      // Declarations deleted because nothing uses them
}

// Changed reports whether the text was modified
func (r Result) Changed() bool {
	return r.Inserted || len(r.Added) > 0 || len(r.Pruned) > 0 || r.Merged > 0 || r.Removed > 0
}

// UsagePredicate reports whether a file body uses the governed symbols
type UsagePredicate func(body string) bool

// UsesAny returns a predicate that is true when any of symbols appears in the
// body as a whole identifier.
func UsesAny(symbols ...string) UsagePredicate {
	return func(body string) bool {
		return len(UsedSymbols(body, symbols)) > 0
	}
}

// UsedSymbols returns the subset of symbols that appear in body as whole
// identifiers, in the order given. Comments, string and template text,
// class names and markup text are not searched, so a class such as
// motion-safe:animate-pulse is not a use of motion. A body the scanner
// cannot read is searched as plain text.
func UsedSymbols(body string, symbols []string) []string {
	code, err := markup.Code(body)
	if err != nil {
		code = body
	}
	var out []string
	for _, sym := range symbols {
		if sym != "" && containsIdent(code, sym) {
			out = append(out, sym)
		}
	}
	return out
}

func containsIdent(s, ident string) bool {
	for i := 0; ; {
		at := strings.Index(s[i:], ident)
		if at < 0 {
			return false
		}
		start := i + at
		if markup.IsIdentBoundary(s, start, start+len(ident)) {
			return true
		}
		i = start + 1
	}
}

// Body returns src with every static import declaration removed
func Body(src string) string {
	decls := Parse(src)
	if len(decls) == 0 {
		return src
	}
	var sb strings.Builder
	prev := 0
	for _, d := range decls {
		sb.WriteString(src[prev:d.StmtStart])
		prev = d.StmtEnd
	}
	sb.WriteString(src[prev:])
	return sb.String()
}

// 🔄 Reconcile makes the declarations for rule.Specifier agree with the body.
//
// When uses reports the body does not use the governed symbols, every
// declaration of the specifier drops them, and declarations left empty are
// deleted. Otherwise the first declaration is extended with the required
// symbols that are missing, later duplicates are folded into it, and when no
// declaration exists one is inserted after the anchor import using the
// canonical symbol order. A nil uses defaults to UsesAny(rule.Symbols...).
// Required symbols already bound by another import are not added.
func Reconcile(src string, rule Rule, required []string, uses UsagePredicate) (Result, error) {
	res := Result{Text: src}

	if rule.Specifier == "" {
		return res, errors.Errorf("import rule has no specifier")
	}
	if len(rule.Symbols) == 0 {
		return res, errors.Errorf("import rule for %q governs no symbols", rule.Specifier)
	}
	if uses == nil {
		uses = UsesAny(rule.Symbols...)
	}

	decls := Parse(src)
	body := Body(src)

	var own, other []Declaration
	for _, d := range decls {
		if d.Specifier == rule.Specifier && !d.TypeOnly {
			own = append(own, d)
		} else {
			other = append(other, d)
		}
	}

	buf := edit.NewBuffer(src)

	if !uses(body) {
		for _, d := range own {
			kept, dropped := splitGoverned(d.Named, rule.Symbols)
			if len(dropped) == 0 {
				continue
			}
			if len(kept) == 0 && d.Default == "" && d.Namespace == "" {
				deleteDeclaration(buf, d)
				res.Removed++
				continue
			}
			nd := d
			nd.Named = kept
			buf.Replace(d.StmtStart, d.StmtEnd, nd.Render())
			res.Pruned = append(res.Pruned, names(dropped)...)
		}
		return apply(buf, res)
	}

	bound := make(map[string]bool)
	for _, d := range other {
		for _, b := range d.Bindings() {
			bound[b] = true
		}
	}
	var want []string
	for _, sym := range canonical(rule.Symbols, required) {
		if !bound[sym] {
			want = append(want, sym)
		}
	}

	if len(own) == 0 {
		if len(want) == 0 {
			return res, nil
		}
		insertDeclaration(buf, src, rule, decls, want)
		res.Inserted = true
		res.Added = want
		return apply(buf, res)
	}

	first := own[0]
	merged := first
	merged.Named = slices.Clone(first.Named)
	has := make(map[string]bool)
	for _, b := range merged.Bindings() {
		has[b] = true
	}

	for _, dup := range own[1:] {
		if !absorb(&merged, dup, has) {
			continue
		}
		deleteDeclaration(buf, dup)
		res.Merged++
	}

	if merged.Namespace != "" {
		// namespace imports cannot carry named entries
		want = nil
	}
	for _, sym := range want {
		if has[sym] {
			continue
		}
		merged.Named = append(merged.Named, Named{Imported: sym, Local: sym})
		has[sym] = true
		res.Added = append(res.Added, sym)
	}

	if rule.Prune {
		used := UsedSymbols(body, rule.Symbols)
		var kept []Named
		for _, n := range merged.Named {
			if slices.Contains(rule.Symbols, n.Local) && !slices.Contains(used, n.Local) {
				res.Pruned = append(res.Pruned, n.Local)
				continue
			}
			kept = append(kept, n)
		}
		merged.Named = kept
	}

	if len(res.Added) > 0 || len(res.Pruned) > 0 || res.Merged > 0 {
		if len(merged.Named) == 0 && merged.Default == "" && merged.Namespace == "" {
			deleteDeclaration(buf, first)
			res.Removed++
		} else {
			buf.Replace(first.StmtStart, first.StmtEnd, merged.Render())
		}
	}

	return apply(buf, res)
}

func apply(buf *edit.Buffer, res Result) (Result, error) {
	out, err := buf.Apply()
	if err != nil {
		return Result{Text: res.Text}, errors.Errorf("applying import edits: %w", err)
	}
	res.Text = out
	return res, nil
}

// absorb folds dup's bindings into d. It refuses when dup carries a default
// or namespace binding d already holds under another name.
func absorb(d *Declaration, dup Declaration, has map[string]bool) bool {
	if dup.Default != "" && d.Default != "" && dup.Default != d.Default {
		return false
	}
	if dup.Namespace != "" && d.Namespace != "" && dup.Namespace != d.Namespace {
		return false
	}
	// a namespace import cannot share a statement with named imports
	if (dup.Namespace != "" || d.Namespace != "") && len(d.Named)+len(dup.Named) > 0 {
		return false
	}
	if d.Default == "" && dup.Default != "" {
		d.Default = dup.Default
		has[d.Default] = true
	}
	if d.Namespace == "" && dup.Namespace != "" {
		d.Namespace = dup.Namespace
		has[d.Namespace] = true
	}
	for _, n := range dup.Named {
		if has[n.Local] {
			continue
		}
		d.Named = append(d.Named, n)
		has[n.Local] = true
	}
	return true
}

func insertDeclaration(buf *edit.Buffer, src string, rule Rule, decls []Declaration, symbols []string) {
	style := Declaration{Quote: '"', Semicolon: true}
	at := -1
	for _, d := range decls {
		if rule.Anchor != "" && d.Specifier == rule.Anchor {
			style, at = d, d.End
			break
		}
	}
	if at < 0 && len(decls) > 0 {
		last := decls[len(decls)-1]
		style, at = last, last.End
	}
	if at < 0 {
		at = prologueEnd(src)
	}

	nd := Declaration{Specifier: rule.Specifier, Quote: style.Quote, Semicolon: style.Semicolon}
	for _, sym := range symbols {
		nd.Named = append(nd.Named, Named{Imported: sym, Local: sym})
	}

	if at == 0 || src[at-1] == '\n' {
		buf.Insert(at, nd.Render()+"\n")
		return
	}
	buf.Insert(at, "\n"+nd.Render())
}

// prologueEnd returns where a first import goes in a file without any:
// after leading directives such as "use client", and after a leading comment
// block that is separated from the code by a blank line.
func prologueEnd(src string) int {
	end := 0
	comment := false
	for p := 0; p < len(src); {
		lineEnd, next := len(src), len(src)
		if nl := strings.IndexByte(src[p:], '\n'); nl >= 0 {
			lineEnd, next = p+nl, p+nl+1
		}
		line := strings.TrimSpace(src[p:lineEnd])

		switch {
		case line == "":
			if comment {
				end, comment = p, false
			}
		case strings.HasPrefix(line, "//"):
			comment = true
		case strings.HasPrefix(line, "/*"):
			closeAt := strings.Index(src[p:], "*/")
			if closeAt < 0 {
				return end
			}
			after := p + closeAt + 2
			nl := strings.IndexByte(src[after:], '\n')
			if nl < 0 || strings.TrimSpace(src[after:after+nl]) != "" {
				return end
			}
			next = after + nl + 1
			comment = true
		case isDirective(line):
			end, comment = next, false
		default:
			return end
		}
		p = next
	}
	return end
}

// isDirective reports whether line is a lone string statement like "use client";
func isDirective(line string) bool {
	line = strings.TrimSpace(strings.TrimSuffix(line, ";"))
	if len(line) < 2 {
		return false
	}
	q := line[0]
	if (q != '"' && q != '\'') || line[len(line)-1] != q {
		return false
	}
	return !strings.ContainsRune(line[1:len(line)-1], rune(q))
}

func deleteDeclaration(buf *edit.Buffer, d Declaration) {
	if d.OwnsLine {
		buf.Delete(d.Start, d.End)
		return
	}
	buf.Delete(d.StmtStart, d.StmtEnd)
}

// canonical returns the required symbols in the rule's order. Required
// symbols the rule does not govern are ignored.
func canonical(order, required []string) []string {
	var out []string
	for _, sym := range order {
		if slices.Contains(required, sym) && !slices.Contains(out, sym) {
			out = append(out, sym)
		}
	}
	return out
}

func splitGoverned(named []Named, governed []string) (kept, dropped []Named) {
	for _, n := range named {
		if slices.Contains(governed, n.Local) {
			dropped = append(dropped, n)
		} else {
			kept = append(kept, n)
		}
	}
	return kept, dropped
}

func names(named []Named) []string {
	out := make([]string, len(named))
	for i, n := range named {
		out[i] = n.Local
	}
	return out
}
