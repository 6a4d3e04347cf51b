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
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/walteh/rewriterc/pkg/exclude"
	"github.com/walteh/rewriterc/pkg/operation"
	"github.com/walteh/rewriterc/pkg/pathctx"
	"github.com/walteh/rewriterc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🏗️ Build compiles the configuration into session options over fs. Every
// pattern, glob and context table is compiled here so a bad config fails
// before any file is touched.
func (cfg *Config) Build(fs billy.Filesystem) (operation.Options, error) {
	if err := cfg.Validate(); err != nil {
		return operation.Options{}, err
	}

	opts := operation.Options{
		FS:         fs,
		Extensions: cfg.Extensions,
		Recursive:  cfg.Recursive,
		Files:      cfg.Files,
	}

	if len(cfg.Contexts) > 0 {
		tables := make([]*pathctx.Table, 0, len(cfg.Contexts))
		for _, name := range cfg.ContextNames() {
			c := cfg.Contexts[name]
			entries := make([]pathctx.Entry, 0, len(c.Entries))
			for _, e := range c.Entries {
				entries = append(entries, pathctx.Entry{Prefix: e.Prefix, Fragment: e.Fragment})
			}
			table, err := pathctx.NewTable(name, entries, c.Default)
			if err != nil {
				return operation.Options{}, errors.Errorf("context %s: %w", name, err)
			}
			tables = append(tables, table)
		}
		resolver, err := pathctx.NewResolver(tables...)
		if err != nil {
			return operation.Options{}, errors.Errorf("building context resolver: %w", err)
		}
		opts.Resolver = resolver
	}

	for _, p := range cfg.Passes {
		pass, err := p.build()
		if err != nil {
			return operation.Options{}, errors.Errorf("pass %s: %w", p.Name, err)
		}
		opts.Passes = append(opts.Passes, pass)
	}

	return opts, nil
}

func (p Pass) build() (operation.Pass, error) {
	rules := make([]text.RuleSpec, 0, len(p.Rules))
	for _, r := range p.Rules {
		rules = append(rules, r.spec())
	}

	fixups := make([]text.RuleSpec, 0, len(p.Fixups))
	for i, f := range p.Fixups {
		fixups = append(fixups, f.spec(i))
	}

	table, err := text.Compile(rules, fixups)
	if err != nil {
		return operation.Pass{}, err
	}

	filter, err := exclude.New(p.Exclude)
	if err != nil {
		return operation.Pass{}, err
	}

	return operation.Pass{Name: p.Name, Table: table, Exclude: filter}, nil
}

func (r Rule) spec() text.RuleSpec {
	s := text.RuleSpec{
		Name:         r.Name,
		Pattern:      r.Pattern,
		Alternatives: r.Alternatives,
		Replacement:  r.Replacement,
		Literal:      r.Literal,
		Context:      r.Context,
	}
	switch r.Guard {
	case GuardReplacementPresent:
		s.Guard = text.ReplacementPresent
	case GuardContains:
		s.Guard = text.ContainsGuard(r.GuardText)
	}
	return s
}

func (f Fixup) spec(i int) text.RuleSpec {
	if f.Collapse != "" {
		s := text.CollapseRepeats(f.Collapse)
		if f.Name != "" {
			s.Name = f.Name
		}
		return s
	}
	name := f.Name
	if name == "" {
		name = fmt.Sprintf("fixup[%d]", i)
	}
	return text.RuleSpec{
		Name:        name,
		Pattern:     f.Pattern,
		Replacement: f.Replacement,
		Literal:     f.Literal,
	}
}
