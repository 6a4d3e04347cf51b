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
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// ErrUnknownContext is returned when a rule names a path-context table that
// the config does not declare
var ErrUnknownContext = errors.Base("unknown path context")

// guard names accepted in rule configuration
const (
	GuardNone               = ""
	GuardReplacementPresent = "replacement_present"
	GuardContains           = "contains"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

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

// 🧭 ContextEntry maps a directory prefix to a replacement fragment
type ContextEntry struct {
	Prefix   string `json:"prefix" yaml:"prefix"`
	Fragment string `json:"fragment" yaml:"fragment"`
}

// 🧭 ContextTable is an ordered, most-specific-first list of entries
type ContextTable struct {
	Default *string        `json:"default,omitempty" yaml:"default,omitempty"`
	Entries []ContextEntry `json:"entries" yaml:"entries"`
}

// 🔄 Rule is one pattern to replacement rewrite
type Rule struct {
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Pattern      string   `json:"pattern" yaml:"pattern"`
	Alternatives []string `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	Replacement  string   `json:"replacement" yaml:"replacement"`
	Literal      bool     `json:"literal,omitempty" yaml:"literal,omitempty"`
	Guard        string   `json:"guard,omitempty" yaml:"guard,omitempty"`
	GuardText    string   `json:"guard_text,omitempty" yaml:"guard_text,omitempty"`
	Context      string   `json:"context,omitempty" yaml:"context,omitempty"`
}

// 🧹 Fixup runs after all rules of its pass. Collapse is shorthand for
// folding repeated tokens; otherwise Pattern and Replacement apply.
type Fixup struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Collapse    string `json:"collapse,omitempty" yaml:"collapse,omitempty"`
	Pattern     string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Replacement string `json:"replacement,omitempty" yaml:"replacement,omitempty"`
	Literal     bool   `json:"literal,omitempty" yaml:"literal,omitempty"`
}

// 📦 Pass is a rule table with its exclusions
type Pass struct {
	Name    string   `json:"name" yaml:"name"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Rules   []Rule   `json:"rules" yaml:"rules"`
	Fixups  []Fixup  `json:"fixups,omitempty" yaml:"fixups,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Root       string                  `json:"root" yaml:"root"`
	Extensions []string                `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	Recursive  bool                    `json:"recursive,omitempty" yaml:"recursive,omitempty"`
	Files      []string                `json:"files,omitempty" yaml:"files,omitempty"`
	Contexts   map[string]ContextTable `json:"contexts,omitempty" yaml:"contexts,omitempty"`
	Passes     []Pass                  `json:"passes" yaml:"passes"`

	location string
}

// 🎯 Load loads the configuration from a file
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

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Location is the file the config was loaded from, empty for configs built in code
func (cfg *Config) Location() string {
	return cfg.location
}

// RootDir resolves Root against the directory of the config file
func (cfg *Config) RootDir() string {
	if filepath.IsAbs(cfg.Root) || cfg.location == "" {
		return cfg.Root
	}
	return filepath.Join(filepath.Dir(cfg.location), cfg.Root)
}

// ContextNames returns declared path-context table names, sorted
func (cfg *Config) ContextNames() []string {
	names := make([]string, 0, len(cfg.Contexts))
	for name := range cfg.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// 🔍 Validate checks if the configuration is valid and fills defaults
func (cfg *Config) Validate() error {
	if len(cfg.Passes) == 0 {
		return errors.Errorf("at least one pass is required")
	}

	// Clean up paths
	if cfg.Root == "" {
		cfg.Root = "."
	}
	cfg.Root = filepath.Clean(cfg.Root)

	// Set defaults
	for i, ext := range cfg.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return errors.Errorf("extensions[%d] is empty", i)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Extensions[i] = ext
	}

	for _, name := range cfg.ContextNames() {
		for j, e := range cfg.Contexts[name].Entries {
			if strings.TrimSpace(e.Prefix) == "" {
				return errors.Errorf("contexts.%s.entries[%d]: prefix is required", name, j)
			}
		}
	}

	seen := map[string]bool{}
	for i := range cfg.Passes {
		pass := &cfg.Passes[i]
		if pass.Name == "" {
			pass.Name = fmt.Sprintf("pass[%d]", i)
		}
		if seen[pass.Name] {
			return errors.Errorf("duplicate pass name %q", pass.Name)
		}
		seen[pass.Name] = true

		if len(pass.Rules) == 0 && len(pass.Fixups) == 0 {
			return errors.Errorf("pass %s: at least one rule or fixup is required", pass.Name)
		}
		for j, r := range pass.Rules {
			if err := r.validate(cfg); err != nil {
				return errors.Errorf("pass %s: rules[%d]: %w", pass.Name, j, err)
			}
		}
		for j, f := range pass.Fixups {
			if err := f.validate(); err != nil {
				return errors.Errorf("pass %s: fixups[%d]: %w", pass.Name, j, err)
			}
		}
	}

	return nil
}

func (r Rule) validate(cfg *Config) error {
	if r.Pattern == "" {
		return errors.Errorf("pattern is required")
	}
	switch r.Guard {
	case GuardNone, GuardReplacementPresent:
	case GuardContains:
		if r.GuardText == "" {
			return errors.Errorf("guard %q requires guard_text", GuardContains)
		}
	default:
		return errors.Errorf("unknown guard %q", r.Guard)
	}
	if r.Context != "" {
		if _, ok := cfg.Contexts[r.Context]; !ok {
			return errors.Errorf("%w: %q", ErrUnknownContext, r.Context)
		}
	}
	return nil
}

func (f Fixup) validate() error {
	switch {
	case f.Collapse != "" && f.Pattern != "":
		return errors.Errorf("collapse and pattern are mutually exclusive")
	case f.Collapse == "" && f.Pattern == "":
		return errors.Errorf("collapse or pattern is required")
	}
	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	names := make([]string, 0, len(cfg.Passes))
	for _, p := range cfg.Passes {
		names = append(names, p.Name)
	}
	return fmt.Sprintf("%s [%s] passes=%s", cfg.Root, strings.Join(cfg.Extensions, ","), strings.Join(names, ","))
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// 📝 Parse parses the config from YAML
func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}
