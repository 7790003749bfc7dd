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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

type spanShape struct {
	Name  string
	Kind  Kind
	Depth int
}

func shapes(spans []Span) []spanShape {
	out := make([]spanShape, len(spans))
	for i, sp := range spans {
		out[i] = spanShape{Name: sp.Name, Kind: sp.Kind, Depth: sp.Depth}
	}
	return out
}

func TestRegions(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		regions int
		spans   []spanShape // spans of the first region
		check   func(t *testing.T, src string, regions []Region)
	}{
		{
			name: "parenthesized_return",
			src: `export default function Profile() {
  return (
    <div className="min-h-screen bg-slate-50">
      <Card>X</Card>
    </div>
  );
}
`,
			regions: 1,
			spans: []spanShape{
				{"div", Open, 0},
				{"Card", Open, 1},
				{"Card", Close, 1},
				{"div", Close, 0},
			},
			check: func(t *testing.T, src string, regions []Region) {
				r := regions[0]
				assert.Equal(t, strings.Index(src, "return"), r.Start, "region should start at return")
				assert.Equal(t, strings.Index(src, ");")+2, r.End, "region should include the semicolon")
				assert.Equal(t, 3, r.Spans[0].Pair, "root should pair with the last close")
				assert.Equal(t, 2, r.Spans[1].Pair, "inner open should pair with its close")
				assert.Equal(t, `<div className="min-h-screen bg-slate-50">`, src[r.Spans[0].Start:r.Spans[0].End])
			},
		},
		{
			name:    "bare_element_return",
			src:     "const A = () => {\n  return <p>hi</p>;\n};\n",
			regions: 1,
			spans: []spanShape{
				{"p", Open, 0},
				{"p", Close, 0},
			},
		},
		{
			name:    "self_closing_root",
			src:     "function A() { return (<Spinner size={3} />); }",
			regions: 1,
			spans: []spanShape{
				{"Spinner", SelfClosing, 0},
			},
		},
		{
			name:    "return_in_literals_and_comments",
			src:     "const s = \"return (<div>\";\n// return (<p>\n/* return (<b> */\nconst t = `return (<i>${\"x\"}`;\n",
			regions: 0,
		},
		{
			name:    "non_markup_return",
			src:     "function f(a, b) { return a < b; }\nfunction g() { return (a + b) / 2; }\n",
			regions: 1,
			check: func(t *testing.T, src string, regions []Region) {
				assert.Empty(t, regions[0].Spans, "arithmetic return should carry no tags")
				_, ok := regions[0].Root(src)
				assert.False(t, ok, "a region without tags has no root")
			},
		},
		{
			name:    "mismatched_close_is_reported",
			src:     "function A() { return (<A><b></div></A>); }",
			regions: 1,
			spans: []spanShape{
				{"A", Open, 0},
				{"b", Open, 1},
				{"div", Close, 1},
				{"A", Close, 0},
			},
			check: func(t *testing.T, src string, regions []Region) {
				r := regions[0]
				assert.Equal(t, 1, r.Spans[2].Pair, "close pairs with the innermost open regardless of name")
			},
		},
		{
			name: "nested_return_belongs_to_outer_region",
			src: `function List({ items }) {
  return (
    <ul>
      {items.map((i) => {
        return <li key={i}>{i > 2 ? "big" : "small"}</li>;
      })}
    </ul>
  );
}
`,
			regions: 1,
			spans: []spanShape{
				{"ul", Open, 0},
				{"li", Open, 1},
				{"li", Close, 1},
				{"ul", Close, 0},
			},
		},
		{
			name: "generics_and_regex_outside_markup",
			src: `const [v, setV] = useState<string>("");
const re = /<div>/g;
function A() {
  return (
    <section title={v.replace(/\)/g, "")}>
      {v}
    </section>
  );
}
`,
			regions: 1,
			spans: []spanShape{
				{"section", Open, 0},
				{"section", Close, 0},
			},
		},
		{
			name: "several_regions",
			src: `function A() { return (<div className="a">x</div>); }
function B() {
  if (loading) return <Spinner />;
  return (<main>y</main>);
}
`,
			regions: 3,
			spans: []spanShape{
				{"div", Open, 0},
				{"div", Close, 0},
			},
		},
		{
			name:    "fragment_root",
			src:     "function A() { return (<><p>a</p></>); }",
			regions: 1,
			spans: []spanShape{
				{"", Open, 0},
				{"p", Open, 1},
				{"p", Close, 1},
				{"", Close, 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions, err := Regions(tt.src)
			require.NoError(t, err, "scanning should succeed")
			require.Len(t, regions, tt.regions, "region count should match")
			if tt.spans != nil {
				assert.Equal(t, tt.spans, shapes(regions[0].Spans), "spans should match")
			}
			if tt.check != nil {
				tt.check(t, tt.src, regions)
			}
		})
	}
}

func TestRegionsErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{
			name:    "unclosed_element",
			src:     "function A() { return (<div><p>x</p>); }",
			wantErr: ErrUnterminated,
		},
		{
			name:    "unterminated_string",
			src:     "function A() { return (<div title={\"x}>y</div>); }",
			wantErr: ErrUnterminated,
		},
		{
			name:    "unterminated_comment",
			src:     "/* never closed\nfunction A() { return (<div/>); }",
			wantErr: ErrUnterminated,
		},
		{
			name:    "mismatched_bracket",
			src:     "function A() { return (<div onClick={() => f())}>x</div>); }",
			wantErr: ErrStructuralDefect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Regions(tt.src)
			require.Error(t, err, "scanning should fail")
			assert.True(t, errors.Is(err, tt.wantErr), "error %v should wrap %v", err, tt.wantErr)
		})
	}
}

func TestRegionRoot(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		wantOK bool
		want   string
	}{
		{
			name:   "root_after_paren",
			src:    "function A() { return (\n  <div className=\"a\">x</div>\n); }",
			wantOK: true,
			want:   "div",
		},
		{
			name:   "conditional_is_not_a_root",
			src:    "function A() { return (ok && <div>x</div>); }",
			wantOK: false,
		},
		{
			name:   "bare_root",
			src:    "function A() { return <main>x</main>; }",
			wantOK: true,
			want:   "main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions, err := Regions(tt.src)
			require.NoError(t, err)
			require.Len(t, regions, 1)

			idx, ok := regions[0].Root(tt.src)
			assert.Equal(t, tt.wantOK, ok, "root presence should match")
			if ok {
				assert.Equal(t, tt.want, regions[0].Spans[idx].Name)
			}
		})
	}
}

func TestRegionBalance(t *testing.T) {
	src := "function A() { return (<Layout><Layout><div>a</div></div></div>); }"
	regions, err := Regions(src)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, 2, r.Count("Layout", Open))
	assert.Equal(t, 0, r.Count("Layout", Close))
	assert.Equal(t, 2, r.Balance("Layout"), "two wrapper opens should be pending")
	assert.Equal(t, -2, r.Balance("div"), "div closes outnumber opens")
}

func TestElements(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		spans []spanShape
	}{
		{
			name: "arrow_body",
			src:  "const Side = () => (<Layout><p>x</p></div>);",
			spans: []spanShape{
				{"Layout", Open, 0},
				{"p", Open, 1},
				{"p", Close, 1},
				{"div", Close, 0},
			},
		},
		{
			name: "return_and_assignment",
			src:  "const el = <b/>;\nfunction A() { return (<main>{ok && <i>y</i>}</main>); }",
			spans: []spanShape{
				{"b", SelfClosing, 0},
				{"main", Open, 0},
				{"i", Open, 1},
				{"i", Close, 1},
				{"main", Close, 0},
			},
		},
		{
			name: "literals_and_comparisons_ignored",
			src:  "const s = \"<div>\"; // <p>\nconst ok = a < b && useState<string>(\"\");",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, err := Elements(tt.src)
			require.NoError(t, err, "scanning should succeed")
			assert.Equal(t, tt.spans, nilIfEmpty(shapes(spans)), "spans should match")
			for i, sp := range spans {
				if sp.Kind == SelfClosing {
					assert.Equal(t, -1, sp.Pair)
					continue
				}
				assert.Equal(t, i, spans[sp.Pair].Pair, "pairs should point at each other")
			}
		})
	}
}

func nilIfEmpty(s []spanShape) []spanShape {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestTagName(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"<PremiumPageLayout>", "PremiumPageLayout"},
		{"</PremiumPageLayout>", "PremiumPageLayout"},
		{`<Box className="x">`, "Box"},
		{"<motion.div>", "motion.div"},
		{"  <a/>  ", "a"},
		{"PremiumPageLayout", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, TagName(tt.tag))
		})
	}
}

func TestIsIdentBoundary(t *testing.T) {
	src := "<PremiumCard><Card><CardContent>"
	assert.False(t, IsIdentBoundary(src, strings.Index(src, "Card"), strings.Index(src, "Card")+4), "Card inside PremiumCard")
	at := strings.Index(src, "<Card>") + 1
	assert.True(t, IsIdentBoundary(src, at, at+4), "standalone Card")
	at = strings.Index(src, "<CardContent") + 1
	assert.False(t, IsIdentBoundary(src, at, at+4), "Card prefix of CardContent")
}
