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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate(), "default config should validate")
	assert.Equal(t, "PremiumPageLayout", cfg.WrapperName())
	assert.Equal(t, "</PremiumPageLayout>", cfg.WrapperCloseTag)
	assert.Contains(t, cfg.Skip, "Home.tsx")
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, dir string, cfg *Config)
	}{
		{
			name:     "yaml_overrides_defaults",
			filename: "pagemod.yaml",
			config: `
root: pages
skip:
  - Legacy.tsx
style_tokens:
  - old: bg-gray-100
    new: bg-transparent
    whole_class: true
jobs: 2
`,
			check: func(t *testing.T, dir string, cfg *Config) {
				assert.Equal(t, filepath.Join(dir, "pages"), cfg.Root, "root should be relative to the config file")
				assert.Equal(t, []string{"Legacy.tsx"}, cfg.Skip, "skip should be replaced")
				require.Len(t, cfg.StyleTokens, 1, "style tokens should be replaced")
				assert.Equal(t, "bg-gray-100", cfg.StyleTokens[0].Old)
				assert.True(t, cfg.StyleTokens[0].WholeClass, "whole_class should be read")
				assert.Equal(t, 2, cfg.Jobs)
				assert.Equal(t, Default().TagRenames, cfg.TagRenames, "omitted tables keep their defaults")
				assert.Equal(t, filepath.Join(dir, "pagemod.yaml"), cfg.Location())
			},
		},
		{
			name:     "yaml_empty_file",
			filename: "pagemod.yml",
			config:   "",
			check: func(t *testing.T, dir string, cfg *Config) {
				assert.Equal(t, Default().Imports, cfg.Imports, "empty file should keep defaults")
			},
		},
		{
			name:        "yaml_unknown_field",
			filename:    "pagemod.yaml",
			config:      "wrapper: <Layout>\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:     "yaml_new_wrapper_derives_close_tag",
			filename: "pagemod.yaml",
			config:   "wrapper_open_tag: <AppShell>\n",
			check: func(t *testing.T, dir string, cfg *Config) {
				assert.Equal(t, "</AppShell>", cfg.WrapperCloseTag)
			},
		},
		{
			name:     "json_config",
			filename: "pagemod.json",
			config: `{
				"root_pattern": {"tag": "main", "marker": "className=\"page"},
				"imports": [{"specifier": "@/ui/panel", "symbols": ["Panel"], "prune": true}]
			}`,
			check: func(t *testing.T, dir string, cfg *Config) {
				assert.Equal(t, "main", cfg.RootPattern.Tag)
				assert.Equal(t, `className="page`, cfg.RootPattern.Marker)
				require.Len(t, cfg.Imports, 1)
				assert.True(t, cfg.Imports[0].Prune)
			},
		},
		{
			name:        "json_unknown_field",
			filename:    "pagemod.json",
			config:      `{"wrapper": "<Layout>"}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:     "hcl_config",
			filename: "pagemod.hcl",
			config: `
root = "${config_dir}/pages"
skip = ["Legacy.tsx"]
jobs = 8
wrapper_open_tag = "<AppShell>"

root_pattern {
  tag    = "main"
  marker = "className=\"page"
}

tag_rename {
  old = "Panel"
  new = "PremiumPanel"
}

import "@/components/ui/panel" {
  symbols = ["Panel", "PanelBody"]
  prune   = true
}
`,
			check: func(t *testing.T, dir string, cfg *Config) {
				assert.Equal(t, filepath.Join(dir, "pages"), cfg.Root, "config_dir should resolve")
				assert.Equal(t, []string{"Legacy.tsx"}, cfg.Skip)
				assert.Equal(t, 8, cfg.Jobs)
				assert.Equal(t, "</AppShell>", cfg.WrapperCloseTag)
				assert.Equal(t, RootPattern{Tag: "main", Marker: `className="page`}, cfg.RootPattern)
				assert.Equal(t, []Replacement{{Old: "Panel", New: "PremiumPanel"}}, cfg.TagRenames)
				require.Len(t, cfg.Imports, 1)
				assert.Equal(t, "@/components/ui/panel", cfg.Imports[0].Specifier)
				assert.Equal(t, []string{"Panel", "PanelBody"}, cfg.Imports[0].Symbols)
				assert.Equal(t, Default().StyleTokens, cfg.StyleTokens, "omitted blocks keep their defaults")
			},
		},
		{
			name:        "hcl_syntax_error",
			filename:    "pagemod.hcl",
			config:      "root = \n",
			wantErr:     true,
			errContains: "parsing HCL",
		},
		{
			name:        "unsupported_extension",
			filename:    "pagemod.toml",
			config:      "root = 'x'",
			wantErr:     true,
			errContains: "no parser found",
		},
		{
			name:        "invalid_after_overlay",
			filename:    "pagemod.yaml",
			config:      "root_pattern:\n  tag: \"\"\n",
			wantErr:     true,
			errContains: "root_pattern.tag is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := zerolog.New(zerolog.NewTestWriter(t))
			ctx := logger.WithContext(context.Background())

			dir := t.TempDir()
			path := filepath.Join(dir, tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0644), "writing config should succeed")

			cfg, err := Load(ctx, path)
			if tt.wantErr {
				require.Error(t, err, "loading should fail")
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				}
				return
			}

			require.NoError(t, err, "loading should succeed")
			require.NotNil(t, cfg, "config should not be nil")
			if tt.check != nil {
				tt.check(t, dir, cfg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		errContains string
	}{
		{
			name:        "missing_include",
			mutate:      func(cfg *Config) { cfg.Include = nil },
			errContains: "include pattern",
		},
		{
			name:        "bad_glob",
			mutate:      func(cfg *Config) { cfg.Skip = []string{"[unclosed"} },
			errContains: "invalid glob pattern",
		},
		{
			name:        "wrapper_not_a_tag",
			mutate:      func(cfg *Config) { cfg.WrapperOpenTag = "PremiumPageLayout" },
			errContains: "is not an opening tag",
		},
		{
			name:        "mismatched_close_tag",
			mutate:      func(cfg *Config) { cfg.WrapperCloseTag = "</Other>" },
			errContains: "does not close",
		},
		{
			name:        "wrapper_same_as_root",
			mutate:      func(cfg *Config) { cfg.WrapperOpenTag, cfg.WrapperCloseTag = "<div>", "</div>" },
			errContains: "share the tag",
		},
		{
			name:        "empty_rename",
			mutate:      func(cfg *Config) { cfg.TagRenames = []Replacement{{Old: "Card"}} },
			errContains: "tag_renames[0]",
		},
		{
			name:        "import_without_symbols",
			mutate:      func(cfg *Config) { cfg.Imports = []ImportRule{{Specifier: "x"}} },
			errContains: "at least one symbol",
		},
		{
			name: "duplicate_import_specifier",
			mutate: func(cfg *Config) {
				cfg.Imports = append(cfg.Imports, ImportRule{Specifier: "framer-motion", Symbols: []string{"AnimatePresence"}})
			},
			errContains: "duplicate specifier",
		},
		{
			name:        "negative_jobs",
			mutate:      func(cfg *Config) { cfg.Jobs = -1 },
			errContains: "jobs must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err, "validation should fail")
			assert.True(t, errors.Is(err, ErrInvalidConfig), "error should wrap ErrInvalidConfig")
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()

	_, ok := Find(dir)
	assert.False(t, ok, "empty directory has no config")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pagemod.yaml"), []byte("jobs: 2\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pagemod.json"), []byte("{}"), 0644))

	path, ok := Find(dir)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, ".pagemod.yaml"), path, "yaml comes before json")
}
