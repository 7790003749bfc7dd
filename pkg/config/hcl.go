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
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL. Expressions may reference
// config_dir, the absolute directory holding the file.
func (p *HCLParser) Parse(ctx context.Context, filename string, data []byte, cfg *Config) error {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filepath.Base(filename))
	if diags.HasErrors() {
		return errors.Errorf("parsing HCL: %s", diags.Error())
	}

	dir, err := filepath.Abs(filepath.Dir(filename))
	if err != nil {
		return errors.Errorf("resolving config directory: %w", err)
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"config_dir": cty.StringVal(dir),
		},
	}

	// Define HCL schema
	type hclConfig struct {
		Root                  *string       `hcl:"root,optional"`
		Include               []string      `hcl:"include,optional"`
		Skip                  []string      `hcl:"skip,optional"`
		WrapperOpenTag        *string       `hcl:"wrapper_open_tag,optional"`
		WrapperCloseTag       *string       `hcl:"wrapper_close_tag,optional"`
		AnchorImportSpecifier *string       `hcl:"anchor_import_specifier,optional"`
		Jobs                  *int          `hcl:"jobs,optional"`
		Backup                *bool         `hcl:"backup,optional"`
		RootPattern           *RootPattern  `hcl:"root_pattern,block"`
		TagRenames            []Replacement `hcl:"tag_rename,block"`
		StyleTokens           []Replacement `hcl:"style_token,block"`
		ClassAppends          []ClassAppend `hcl:"class_append,block"`
		Imports               []ImportRule  `hcl:"import,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Overlay onto the defaults
	if hclCfg.Root != nil {
		cfg.Root = *hclCfg.Root
	}
	if hclCfg.Include != nil {
		cfg.Include = hclCfg.Include
	}
	if hclCfg.Skip != nil {
		cfg.Skip = hclCfg.Skip
	}
	if hclCfg.WrapperOpenTag != nil {
		cfg.WrapperOpenTag = *hclCfg.WrapperOpenTag
	}
	if hclCfg.WrapperCloseTag != nil {
		cfg.WrapperCloseTag = *hclCfg.WrapperCloseTag
	}
	if hclCfg.AnchorImportSpecifier != nil {
		cfg.AnchorImportSpecifier = *hclCfg.AnchorImportSpecifier
	}
	if hclCfg.Jobs != nil {
		cfg.Jobs = *hclCfg.Jobs
	}
	if hclCfg.Backup != nil {
		cfg.Backup = *hclCfg.Backup
	}
	if hclCfg.RootPattern != nil {
		cfg.RootPattern = *hclCfg.RootPattern
	}
	if len(hclCfg.TagRenames) > 0 {
		cfg.TagRenames = hclCfg.TagRenames
	}
	if len(hclCfg.StyleTokens) > 0 {
		cfg.StyleTokens = hclCfg.StyleTokens
	}
	if len(hclCfg.ClassAppends) > 0 {
		cfg.ClassAppends = hclCfg.ClassAppends
	}
	if len(hclCfg.Imports) > 0 {
		cfg.Imports = hclCfg.Imports
	}

	return nil
}
