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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"gitlab.com/tozd/go/errors"
)

// Values exposed to HCL configs as defaults.*
var (
	DefaultIgnoreDirs = []string{
		"node_modules", ".git", "dist", "build", ".next",
		"coverage", ".vscode", ".idea", "__pycache__",
	}
	DefaultCodeExtensions = []string{".ts", ".tsx", ".js", ".jsx"}
	DefaultWebExtensions  = []string{
		".md", ".ts", ".tsx", ".js", ".jsx", ".json",
		".html", ".css", ".txt", ".yml", ".yaml",
	}
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

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"defaults": cty.ObjectVal(map[string]cty.Value{
				"ignore_dirs":     stringList(DefaultIgnoreDirs),
				"code_extensions": stringList(DefaultCodeExtensions),
				"web_extensions":  stringList(DefaultWebExtensions),
			}),
		},
		Functions: map[string]function.Function{
			"concat":   stdlib.ConcatFunc,
			"distinct": stdlib.DistinctFunc,
			"lower":    stdlib.LowerFunc,
			"upper":    stdlib.UpperFunc,
		},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &cfg, nil
}

func stringList(values []string) cty.Value {
	out := make([]cty.Value, 0, len(values))
	for _, v := range values {
		out = append(out, cty.StringVal(v))
	}
	return cty.ListVal(out)
}
