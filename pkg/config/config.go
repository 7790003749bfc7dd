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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/pagemod/pkg/markup"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.Base("invalid config")

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse decodes data over cfg, leaving fields the file omits untouched
	Parse(ctx context.Context, filename string, data []byte, cfg *Config) error

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 Replacement represents a literal replacement pair
type Replacement struct {
	Old string `json:"old" yaml:"old" hcl:"old"` // Original text
	New string `json:"new" yaml:"new" hcl:"new"` // Replacement text

	// WholeClass restricts a style token to complete class names. Ignored for tag renames.
	WholeClass bool `json:"whole_class,omitempty" yaml:"whole_class,omitempty" hcl:"whole_class,optional"`
}

// 🎯 RootPattern identifies the element the wrapper replaces
type RootPattern struct {
	Tag    string `json:"tag" yaml:"tag" hcl:"tag"`          // Element name, e.g. div
	Marker string `json:"marker" yaml:"marker" hcl:"marker"` // Substring its opening tag must contain
}

// ➕ ClassAppend adds classes to every literal className of a tag
type ClassAppend struct {
	Tag     string `json:"tag" yaml:"tag" hcl:"tag"`
	Classes string `json:"classes" yaml:"classes" hcl:"classes"`
}

// 📥 ImportRule keeps one import declaration in line with the symbols a file uses
type ImportRule struct {
	Specifier string   `json:"specifier" yaml:"specifier" hcl:"specifier,label"`
	Symbols   []string `json:"symbols" yaml:"symbols" hcl:"symbols"`
	Anchor    string   `json:"anchor,omitempty" yaml:"anchor,omitempty" hcl:"anchor,optional"`
	Prune     bool     `json:"prune,omitempty" yaml:"prune,omitempty" hcl:"prune,optional"`
}

// 📚 Config holds the rule tables and run settings
type Config struct {
	Root                  string        `json:"root" yaml:"root"`
	Include               []string      `json:"include" yaml:"include"`
	Skip                  []string      `json:"skip" yaml:"skip"`
	RootPattern           RootPattern   `json:"root_pattern" yaml:"root_pattern"`
	WrapperOpenTag        string        `json:"wrapper_open_tag" yaml:"wrapper_open_tag"`
	WrapperCloseTag       string        `json:"wrapper_close_tag" yaml:"wrapper_close_tag"`
	TagRenames            []Replacement `json:"tag_renames" yaml:"tag_renames"`
	StyleTokens           []Replacement `json:"style_tokens" yaml:"style_tokens"`
	ClassAppends          []ClassAppend `json:"class_appends" yaml:"class_appends"`
	AnchorImportSpecifier string        `json:"anchor_import_specifier" yaml:"anchor_import_specifier"`
	Imports               []ImportRule  `json:"imports" yaml:"imports"`
	Jobs                  int           `json:"jobs,omitempty" yaml:"jobs,omitempty"`
	Backup                bool          `json:"backup,omitempty" yaml:"backup,omitempty"`

	location string
}

// 🏭 Default returns the built-in page migration
func Default() *Config {
	return &Config{
		Root:    ".",
		Include: []string{"**/*.tsx"},
		Skip:    []string{"Home.tsx", "Marketplace.tsx", "GigDetail.tsx", "CreateGig.tsx"},
		RootPattern: RootPattern{
			Tag:    "div",
			Marker: `className="min-h-screen bg-slate-50`,
		},
		WrapperOpenTag:  "<PremiumPageLayout>",
		WrapperCloseTag: "</PremiumPageLayout>",
		TagRenames: []Replacement{
			{Old: "Card", New: "PremiumCard"},
		},
		// Literal substrings: bg-slate-50 also rewrites the front of
		// bg-slate-500. Set WholeClass to match complete class names only.
		StyleTokens: []Replacement{
			{Old: "bg-slate-50", New: "bg-transparent"},
			{Old: "text-blue-600", New: "text-primary"},
			{Old: "text-blue-500", New: "text-primary"},
		},
		ClassAppends: []ClassAppend{
			{Tag: "CardContent", Classes: "p-6 md:p-8"},
		},
		AnchorImportSpecifier: "@/components/PremiumPageLayout",
		Imports: []ImportRule{
			{Specifier: "@/components/PremiumPageLayout", Symbols: []string{"PremiumPageLayout", "PremiumCard"}, Prune: true},
			{Specifier: "framer-motion", Symbols: []string{"motion"}},
			{Specifier: "@/components/ui/card", Symbols: []string{"Card", "CardContent", "CardHeader", "CardTitle"}, Prune: true},
		},
		Jobs: 4,
	}
}

// 🎯 Load reads the file at path over the defaults and validates the result
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg := Default()
	if err := p.Parse(ctx, path, data, cfg); err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	// A new wrapper without its own closing tag gets a derived one
	def := Default()
	if cfg.WrapperOpenTag != def.WrapperOpenTag && cfg.WrapperCloseTag == def.WrapperCloseTag {
		cfg.WrapperCloseTag = ""
	}

	// Relative roots are relative to the config file
	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().
		Str("root", cfg.Root).
		Int("imports", len(cfg.Imports)).
		Int("style_tokens", len(cfg.StyleTokens)).
		Msg("configuration loaded")

	return cfg, nil
}

// DefaultFiles are the names Find looks for, in order
var DefaultFiles = []string{".pagemod.hcl", ".pagemod.yaml", ".pagemod.yml", ".pagemod.json"}

// 🔍 Find returns the first of DefaultFiles present in dir
func Find(dir string) (string, bool) {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Location returns the file the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// WrapperName returns the element name of the wrapper tag
func (cfg *Config) WrapperName() string {
	return markup.TagName(cfg.WrapperOpenTag)
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.Root == "" {
		return errors.Errorf("%w: root is required", ErrInvalidConfig)
	}
	if len(cfg.Include) == 0 {
		return errors.Errorf("%w: at least one include pattern is required", ErrInvalidConfig)
	}
	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Skip...) {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("%w: invalid glob pattern %q", ErrInvalidConfig, pattern)
		}
	}

	if cfg.RootPattern.Tag == "" {
		return errors.Errorf("%w: root_pattern.tag is required", ErrInvalidConfig)
	}
	if cfg.RootPattern.Marker == "" {
		return errors.Errorf("%w: root_pattern.marker is required", ErrInvalidConfig)
	}

	name := markup.TagName(cfg.WrapperOpenTag)
	if name == "" {
		return errors.Errorf("%w: wrapper_open_tag %q is not an opening tag", ErrInvalidConfig, cfg.WrapperOpenTag)
	}
	if cfg.WrapperCloseTag == "" {
		cfg.WrapperCloseTag = markup.CloseTag(name)
	}
	if cfg.WrapperCloseTag != markup.CloseTag(name) {
		return errors.Errorf("%w: wrapper_close_tag %q does not close %q", ErrInvalidConfig, cfg.WrapperCloseTag, cfg.WrapperOpenTag)
	}
	if name == cfg.RootPattern.Tag {
		return errors.Errorf("%w: wrapper and root pattern share the tag %q", ErrInvalidConfig, name)
	}

	for i, r := range cfg.TagRenames {
		if r.Old == "" || r.New == "" {
			return errors.Errorf("%w: tag_renames[%d]: old and new are required", ErrInvalidConfig, i)
		}
	}
	for i, r := range cfg.StyleTokens {
		if r.Old == "" {
			return errors.Errorf("%w: style_tokens[%d]: old is required", ErrInvalidConfig, i)
		}
	}
	for i, a := range cfg.ClassAppends {
		if a.Tag == "" || a.Classes == "" {
			return errors.Errorf("%w: class_appends[%d]: tag and classes are required", ErrInvalidConfig, i)
		}
	}

	seen := make(map[string]bool)
	for i, rule := range cfg.Imports {
		if rule.Specifier == "" {
			return errors.Errorf("%w: imports[%d]: specifier is required", ErrInvalidConfig, i)
		}
		if len(rule.Symbols) == 0 {
			return errors.Errorf("%w: imports[%d] (%s): at least one symbol is required", ErrInvalidConfig, i, rule.Specifier)
		}
		if seen[rule.Specifier] {
			return errors.Errorf("%w: imports[%d]: duplicate specifier %q", ErrInvalidConfig, i, rule.Specifier)
		}
		seen[rule.Specifier] = true
	}

	if cfg.Jobs < 0 {
		return errors.Errorf("%w: jobs must not be negative", ErrInvalidConfig)
	}

	cfg.Root = filepath.Clean(cfg.Root)
	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s %v -> %s (%d imports)", cfg.Root, cfg.Include, cfg.WrapperName(), len(cfg.Imports))
}
