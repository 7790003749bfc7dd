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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/pagemod/pkg/markup"
	"gitlab.com/tozd/go/errors"
)

func TestBalance(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		want     string
		promoted int
	}{
		{
			name: "promotes_structural_partner_not_nearest",
			src: `function A() {
  return (
    <PremiumPageLayout>
      <div className="grid">
        <div>a</div>
      </div>
    </div>
  );
}
`,
			want: `function A() {
  return (
    <PremiumPageLayout>
      <div className="grid">
        <div>a</div>
      </div>
    </PremiumPageLayout>
  );
}
`,
			promoted: 1,
		},
		{
			name: "two_unclosed_wrappers_promoted_last_first",
			src: `function A() {
  return (
    <PremiumPageLayout>
    <PremiumPageLayout>
      <p>x</p>
    </div>
    </div>
  );
}
`,
			want: `function A() {
  return (
    <PremiumPageLayout>
    <PremiumPageLayout>
      <p>x</p>
    </PremiumPageLayout>
    </PremiumPageLayout>
  );
}
`,
			promoted: 2,
		},
		{
			name: "regions_balanced_independently",
			src: `function A() {
  if (x) {
    return (<PremiumPageLayout>a</PremiumPageLayout>);
  }
  return (
    <PremiumPageLayout>
      <div>b</div>
    </div>
  );
}
`,
			want: `function A() {
  if (x) {
    return (<PremiumPageLayout>a</PremiumPageLayout>);
  }
  return (
    <PremiumPageLayout>
      <div>b</div>
    </PremiumPageLayout>
  );
}
`,
			promoted: 1,
		},
		{
			name:     "already_balanced",
			src:      "function A() { return (<PremiumPageLayout><div>a</div></PremiumPageLayout>); }",
			want:     "function A() { return (<PremiumPageLayout><div>a</div></PremiumPageLayout>); }",
			promoted: 0,
		},
		{
			name:     "no_wrapper",
			src:      "function A() { return (<div>a</div>); }",
			want:     "function A() { return (<div>a</div>); }",
			promoted: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Balance(tt.src, "div", "PremiumPageLayout")
			require.NoError(t, err, "balance should succeed")
			assert.Equal(t, tt.want, res.Text)
			assert.Equal(t, tt.promoted, res.Promoted, "promoted count should match")

			regions, err := markup.Regions(res.Text)
			require.NoError(t, err, "output should scan")
			for _, r := range regions {
				assert.Zero(t, r.Balance("PremiumPageLayout"), "every region should be balanced")
			}

			again, err := Balance(res.Text, "div", "PremiumPageLayout")
			require.NoError(t, err)
			assert.Equal(t, res.Text, again.Text, "balancing twice should change nothing")
		})
	}
}

func TestBalanceDefects(t *testing.T) {
	tests := []struct {
		name        string
		src         string
		errContains string
	}{
		{
			name:        "no_candidate_close",
			src:         "function A() { return (<PremiumPageLayout><p>a</p></section>); }",
			errContains: "no </div> to promote",
		},
		{
			name:        "extra_wrapper_close",
			src:         "function A() { return (<div><PremiumPageLayout>a</PremiumPageLayout></PremiumPageLayout>); }",
			errContains: "more </PremiumPageLayout>",
		},
		{
			name:        "crossed_pairing",
			src:         "function A() { return (<div><PremiumPageLayout>a</div></PremiumPageLayout>); }",
			errContains: "is closed by",
		},
		{
			name:        "arrow_body_mismatch",
			src:         "const Side = () => (<PremiumPageLayout><p>side</p></div>);\nfunction A() { return (<PremiumPageLayout>a</PremiumPageLayout>); }",
			errContains: "outside return expressions",
		},
		{
			name:        "assigned_markup_mismatch",
			src:         "const el = <div><PremiumPageLayout>a</div></PremiumPageLayout>;",
			errContains: "is closed by",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Balance(tt.src, "div", "PremiumPageLayout")
			require.Error(t, err, "balance should fail")
			assert.True(t, errors.Is(err, markup.ErrStructuralDefect), "error should wrap ErrStructuralDefect")
			assert.Contains(t, err.Error(), tt.errContains)
			assert.Equal(t, tt.src, res.Text, "text should be unchanged on failure")
		})
	}
}

func TestCollapseRepeatedClasses(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		want      string
		collapsed int
	}{
		{
			name:      "triple_repeat",
			src:       `<CardContent className="p-6 md:p-8 p-6 md:p-8 p-6 md:p-8">`,
			want:      `<CardContent className="p-6 md:p-8">`,
			collapsed: 1,
		},
		{
			name:      "repeat_after_other_classes",
			src:       `<CardContent className="space-y-4 p-6 md:p-8 p-6 md:p-8">`,
			want:      `<CardContent className="space-y-4 p-6 md:p-8">`,
			collapsed: 1,
		},
		{
			name:      "single_token_repeat",
			src:       `<div className="flex flex gap-2">`,
			want:      `<div className="flex gap-2">`,
			collapsed: 1,
		},
		{
			name: "no_repeat_left_byte_for_byte",
			src:  `<div className="flex  gap-2 flex">`,
			want: `<div className="flex  gap-2 flex">`,
		},
		{
			name: "other_attributes_ignored",
			src:  `<div dataClassName="a a" className="b">`,
			want: `<div dataClassName="a a" className="b">`,
		},
		{
			name:      "every_string",
			src:       `<a className="x x"/><b className="y z y z"/>`,
			want:      `<a className="x"/><b className="y z"/>`,
			collapsed: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := CollapseRepeatedClasses(tt.src)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.collapsed, n)
			assert.False(t, strings.Contains(got, "p-6 md:p-8 p-6"), "repeats should be gone")
		})
	}
}

func TestBalanceCollapsesClasses(t *testing.T) {
	src := "function A() { return (<PremiumPageLayout><CardContent className=\"p-6 md:p-8 p-6 md:p-8\">x</CardContent></div>); }"
	res, err := Balance(src, "div", "PremiumPageLayout")
	require.NoError(t, err)
	assert.Equal(t, "function A() { return (<PremiumPageLayout><CardContent className=\"p-6 md:p-8\">x</CardContent></PremiumPageLayout>); }", res.Text)
	assert.Equal(t, 1, res.Promoted)
	assert.Equal(t, 1, res.Collapsed)
}
