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

// Package codemod runs the per-file rewrite pipeline: tag renames, wrapper
// injection, tag balancing, style tokens and import reconciliation. Every
// stage works on text only; reading and writing files is left to callers.
package codemod

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/pagemod/pkg/balance"
	"github.com/walteh/pagemod/pkg/config"
	"github.com/walteh/pagemod/pkg/imports"
	"github.com/walteh/pagemod/pkg/markup"
	"github.com/walteh/pagemod/pkg/status"
	"github.com/walteh/pagemod/pkg/text"
	"github.com/walteh/pagemod/pkg/wrapper"
	"gitlab.com/tozd/go/errors"
)

// 📄 SourceUnit is the full text of one file plus its path
type SourceUnit struct {
	Path string
	Text string
}

// 📊 Report describes what the pipeline did to one file
type Report struct {
	Path         string
	Outcome      status.Outcome
	Injected     bool     // Wrapper replaced a root element
	Matches      int      // Return expressions whose root matched
	Promoted     int      // Closing tags promoted to the wrapper
	Renamed      int      // Component tag renames
	Replacements int      // Style token replacements
	ClassAppends int      // Tags that received appended classes
	Collapsed    int      // Class strings with repeated tokens collapsed
	Imports      []string // One line per changed import declaration
	Err          error
}

// Detail summarizes the report in a short human readable phrase
func (r Report) Detail() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	var parts []string
	if r.Injected {
		parts = append(parts, "wrapper")
	}
	if r.Matches > 1 {
		parts = append(parts, fmt.Sprintf("%d matching roots", r.Matches))
	}
	if r.Promoted > 0 {
		parts = append(parts, fmt.Sprintf("%d promoted", r.Promoted))
	}
	if r.Renamed > 0 {
		parts = append(parts, fmt.Sprintf("%d renamed", r.Renamed))
	}
	if r.Replacements > 0 {
		parts = append(parts, fmt.Sprintf("%d tokens", r.Replacements))
	}
	if r.ClassAppends+r.Collapsed > 0 {
		parts = append(parts, fmt.Sprintf("%d classes", r.ClassAppends+r.Collapsed))
	}
	parts = append(parts, r.Imports...)
	return strings.Join(parts, ", ")
}

// 🔧 Pipeline holds the compiled rule tables
type Pipeline struct {
	pattern      wrapper.RootPattern
	wrapperOpen  string
	wrapperClose string
	wrapperName  string
	renames      []text.Rule
	tokens       []text.Rule
	appends      []text.ClassAppend
	imports      []imports.Rule
	rewriter     text.Rewriter
}

// 🏭 New validates cfg and compiles it into a pipeline
func New(cfg *config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	p := &Pipeline{
		pattern:      wrapper.RootPattern{Tag: cfg.RootPattern.Tag, Marker: cfg.RootPattern.Marker},
		wrapperOpen:  cfg.WrapperOpenTag,
		wrapperClose: cfg.WrapperCloseTag,
		wrapperName:  cfg.WrapperName(),
		rewriter:     text.NewTokenRewriter(),
	}

	for _, r := range cfg.TagRenames {
		p.renames = append(p.renames, text.TagRenameRules(r.Old, r.New)...)
	}
	for _, r := range cfg.StyleTokens {
		p.tokens = append(p.tokens, text.Rule{FromText: r.Old, ToText: r.New, WholeClass: r.WholeClass})
	}
	if err := p.rewriter.ValidateRules(p.renames); err != nil {
		return nil, errors.Errorf("validating tag renames: %w", err)
	}
	if err := p.rewriter.ValidateRules(p.tokens); err != nil {
		return nil, errors.Errorf("validating style tokens: %w", err)
	}

	for _, a := range cfg.ClassAppends {
		p.appends = append(p.appends, text.ClassAppend{Tag: a.Tag, Classes: a.Classes})
	}

	for _, r := range cfg.Imports {
		anchor := r.Anchor
		if anchor == "" && r.Specifier != cfg.AnchorImportSpecifier {
			anchor = cfg.AnchorImportSpecifier
		}
		p.imports = append(p.imports, imports.Rule{
			Specifier: r.Specifier,
			Symbols:   r.Symbols,
			Anchor:    anchor,
			Prune:     r.Prune,
		})
	}

	return p, nil
}

// IsDefect reports whether err means the file cannot be rewritten safely
func IsDefect(err error) bool {
	return errors.Is(err, markup.ErrStructuralDefect) || errors.Is(err, markup.ErrUnterminated)
}

// 🔄 Process runs every stage over unit. The returned unit carries the
// original text whenever the outcome is not a rewrite.
func (p *Pipeline) Process(ctx context.Context, unit SourceUnit) (SourceUnit, Report) {
	logger := zerolog.Ctx(ctx).With().Str("path", unit.Path).Logger()
	rep := Report{Path: unit.Path, Outcome: status.OutcomeUnchanged}

	out, err := p.rewrite(ctx, &logger, unit.Text, &rep)
	if err != nil {
		rep.Err = err
		if IsDefect(err) {
			rep.Outcome = status.OutcomeStructuralDefect
		} else {
			rep.Outcome = status.OutcomeFailed
		}
		logger.Debug().Err(err).Str("outcome", rep.Outcome.String()).Msg("file left untouched")
		return unit, rep
	}

	if out == unit.Text {
		return unit, rep
	}

	rep.Outcome = status.OutcomeTransformed
	if rep.Matches > 1 {
		rep.Outcome = status.OutcomeAmbiguousSkip
	}
	return SourceUnit{Path: unit.Path, Text: out}, rep
}

func (p *Pipeline) rewrite(ctx context.Context, logger *zerolog.Logger, src string, rep *Report) (string, error) {
	// files with neither the root pattern nor the wrapper are out of scope
	hasRoot := strings.Contains(src, "<"+p.pattern.Tag) && strings.Contains(src, p.pattern.Marker)
	if !hasRoot && !strings.Contains(src, "<"+p.wrapperName) {
		logger.Debug().Msg("root pattern absent")
		return src, nil
	}

	src, rep.Renamed = text.RewriteString(src, p.renames)

	injected, err := wrapper.Inject(src, p.pattern, p.wrapperOpen, p.wrapperClose)
	if err != nil {
		return "", errors.Errorf("injecting wrapper: %w", err)
	}
	src = injected.Text
	rep.Injected = injected.Applied
	rep.Matches = injected.Matches
	if injected.Ambiguous {
		logger.Warn().Int("matches", injected.Matches).Msg("several return expressions match the root pattern; only the first was wrapped")
	}

	balanced, err := balance.Balance(src, p.pattern.Tag, p.wrapperName)
	if err != nil {
		return "", errors.Errorf("balancing %s: %w", p.wrapperName, err)
	}
	src = balanced.Text
	rep.Promoted = balanced.Promoted
	rep.Collapsed = balanced.Collapsed

	tokens, err := p.rewriter.Rewrite(ctx, strings.NewReader(src), p.tokens)
	if err != nil {
		return "", errors.Errorf("rewriting style tokens: %w", err)
	}
	src = string(tokens.ModifiedContent)
	rep.Replacements = tokens.ReplacementCount

	src, rep.ClassAppends = text.AppendClasses(src, p.appends)

	for _, rule := range p.imports {
		required := imports.UsedSymbols(imports.Body(src), rule.Symbols)
		res, err := imports.Reconcile(src, rule, required, imports.UsesAny(rule.Symbols...))
		if err != nil {
			return "", errors.Errorf("reconciling imports from %q: %w", rule.Specifier, err)
		}
		src = res.Text
		if line := describeImport(rule.Specifier, res); line != "" {
			rep.Imports = append(rep.Imports, line)
		}
	}

	logger.Debug().
		Bool("injected", rep.Injected).
		Int("promoted", rep.Promoted).
		Int("renamed", rep.Renamed).
		Int("tokens", rep.Replacements).
		Strs("imports", rep.Imports).
		Msg("pipeline complete")

	return src, nil
}

func describeImport(specifier string, res imports.Result) string {
	switch {
	case res.Inserted:
		return fmt.Sprintf("+import %s", specifier)
	case res.Removed > 0 && res.Merged == 0 && len(res.Added) == 0:
		return fmt.Sprintf("-import %s", specifier)
	case res.Changed():
		return fmt.Sprintf("~import %s", specifier)
	default:
		return ""
	}
}
