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
)

// Rule defines a single literal token replacement
type Rule struct {
	// FromText is the literal to replace
	FromText string `json:"from" yaml:"from"`

	// ToText is the replacement literal
	ToText string `json:"to" yaml:"to"`

	// Rescan lets this rule match text produced by earlier rules
	Rescan bool `json:"rescan,omitempty" yaml:"rescan,omitempty"`

	// WholeClass only matches FromText as a complete class token, so
	// bg-slate-50 leaves bg-slate-500 alone. A variant prefix (hover:) or an
	// opacity suffix (/50) still counts as a boundary.
	WholeClass bool `json:"whole_class,omitempty" yaml:"whole_class,omitempty"`
}

// Result contains the results of a token rewrite
type Result struct {
	// WasModified indicates if any replacements were made
	WasModified bool

	// ReplacementCount is the number of replacements made
	ReplacementCount int

	// OriginalContent is the content before replacements
	OriginalContent []byte

	// ModifiedContent is the content after replacements
	ModifiedContent []byte
}

// Rewriter defines the interface for token rewriting
type Rewriter interface {
	// Rewrite applies a set of rules to the content
	Rewrite(ctx context.Context, content io.Reader, rules []Rule) (*Result, error)

	// ValidateRules checks that all rules are valid
	ValidateRules(rules []Rule) error
}

// 🔁 TagRenameRules builds the tag-for-tag rules that rename a component.
// Every opening form is anchored on the character after the name so that
// <Card never matches <CardContent.
func TagRenameRules(from, to string) []Rule {
	return []Rule{
		{FromText: "<" + from + " ", ToText: "<" + to + " "},
		{FromText: "<" + from + "\n", ToText: "<" + to + "\n"},
		{FromText: "<" + from + "\t", ToText: "<" + to + "\t"},
		{FromText: "<" + from + ">", ToText: "<" + to + ">"},
		{FromText: "<" + from + "/>", ToText: "<" + to + "/>"},
		{FromText: "</" + from + ">", ToText: "</" + to + ">"},
	}
}
