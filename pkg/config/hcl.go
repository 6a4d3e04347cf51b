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

// 🔧 HCLParser implements the Parser interface for HCL files. Expressions
// may read environment variables as env.NAME.
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// hclConfig is the block layout of an HCL config:
//
//	root       = "pages/tools"
//	extensions = [".js"]
//
//	context "imports" {
//	  entry {
//	    prefix   = "**/admin"
//	    fragment = "../../../"
//	  }
//	}
//
//	pass "update" {
//	  exclude = ["difal.js"]
//	  rule "card" {
//	    pattern     = "bg-white"
//	    replacement = "bg-card text-card-foreground"
//	  }
//	  fixup {
//	    collapse = "border-border"
//	  }
//	}
type hclConfig struct {
	Root       string   `hcl:"root,optional"`
	Extensions []string `hcl:"extensions,optional"`
	Recursive  bool     `hcl:"recursive,optional"`
	Files      []string `hcl:"files,optional"`
	Contexts   []struct {
		Name    string  `hcl:"name,label"`
		Default *string `hcl:"default,optional"`
		Entries []struct {
			Prefix   string `hcl:"prefix"`
			Fragment string `hcl:"fragment"`
		} `hcl:"entry,block"`
	} `hcl:"context,block"`
	Passes []struct {
		Name    string   `hcl:"name,label"`
		Exclude []string `hcl:"exclude,optional"`
		Rules   []struct {
			Name         string   `hcl:"name,label"`
			Pattern      string   `hcl:"pattern"`
			Alternatives []string `hcl:"alternatives,optional"`
			Replacement  string   `hcl:"replacement"`
			Literal      bool     `hcl:"literal,optional"`
			Guard        string   `hcl:"guard,optional"`
			GuardText    string   `hcl:"guard_text,optional"`
			Context      string   `hcl:"context,optional"`
		} `hcl:"rule,block"`
		Fixups []struct {
			Name        string `hcl:"name,optional"`
			Collapse    string `hcl:"collapse,optional"`
			Pattern     string `hcl:"pattern,optional"`
			Replacement string `hcl:"replacement,optional"`
			Literal     bool   `hcl:"literal,optional"`
		} `hcl:"fixup,block"`
	} `hcl:"pass,block"`
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
			"env": envObject(),
		},
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		Root:       hclCfg.Root,
		Extensions: hclCfg.Extensions,
		Recursive:  hclCfg.Recursive,
		Files:      hclCfg.Files,
	}

	for _, c := range hclCfg.Contexts {
		if cfg.Contexts == nil {
			cfg.Contexts = map[string]ContextTable{}
		}
		if _, dup := cfg.Contexts[c.Name]; dup {
			return nil, errors.Errorf("duplicate context %q", c.Name)
		}
		table := ContextTable{Default: c.Default}
		for _, e := range c.Entries {
			table.Entries = append(table.Entries, ContextEntry{Prefix: e.Prefix, Fragment: e.Fragment})
		}
		cfg.Contexts[c.Name] = table
	}

	for _, hp := range hclCfg.Passes {
		pass := Pass{Name: hp.Name, Exclude: hp.Exclude}
		for _, r := range hp.Rules {
			pass.Rules = append(pass.Rules, Rule{
				Name:         r.Name,
				Pattern:      r.Pattern,
				Alternatives: r.Alternatives,
				Replacement:  r.Replacement,
				Literal:      r.Literal,
				Guard:        r.Guard,
				GuardText:    r.GuardText,
				Context:      r.Context,
			})
		}
		for _, f := range hp.Fixups {
			pass.Fixups = append(pass.Fixups, Fixup{
				Name:        f.Name,
				Collapse:    f.Collapse,
				Pattern:     f.Pattern,
				Replacement: f.Replacement,
				Literal:     f.Literal,
			})
		}
		cfg.Passes = append(cfg.Passes, pass)
	}

	return cfg, nil
}

// envObject exposes the process environment to HCL expressions
func envObject() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(vars)
}
