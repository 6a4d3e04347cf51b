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

// Package exclude decides which files are protected from rewriting.
package exclude

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// Predicate excludes a root-relative path when it returns true
type Predicate func(path string) bool

type rule struct {
	raw      string
	glob     string
	negate   bool
	basename bool
	literal  bool
}

// 🚧 Filter is an ordered exclusion set. Patterns use doublestar syntax; a
// pattern without a slash matches the file name alone, a leading "!"
// re-includes, and the last matching pattern wins. A pattern without "*",
// "?", "{" or a backslash is a literal name, so route files such as
// "[id].js" only match themselves.
type Filter struct {
	rules      []rule
	predicates []namedPredicate
}

type namedPredicate struct {
	name string
	fn   Predicate
}

// 🔍 Decision explains an eligibility verdict
type Decision struct {
	Excluded bool
	// Reason is the pattern or predicate name that decided, empty when nothing matched
	Reason string
}

// New compiles patterns. Invalid globs are a configuration error.
func New(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		r, err := compile(p)
		if err != nil {
			return nil, err
		}
		f.rules = append(f.rules, r)
	}
	return f, nil
}

func compile(raw string) (rule, error) {
	p := strings.TrimSpace(raw)
	r := rule{raw: raw}
	if strings.HasPrefix(p, "!") {
		r.negate = true
		p = p[1:]
	}
	p = strings.TrimPrefix(filepath.ToSlash(p), "./")
	if p == "" {
		return rule{}, errors.Errorf("empty exclude pattern %q", raw)
	}
	if !doublestar.ValidatePattern(p) {
		return rule{}, errors.Errorf("invalid exclude pattern %q", raw)
	}
	r.basename = !strings.Contains(p, "/")
	r.literal = !strings.ContainsAny(p, "*?{\\")
	r.glob = p
	return r, nil
}

// WithPredicate adds a named predicate evaluated after the patterns
func (f *Filter) WithPredicate(name string, fn Predicate) *Filter {
	f.predicates = append(f.predicates, namedPredicate{name: name, fn: fn})
	return f
}

// Decide evaluates path, which is relative to the rewrite root. A nil
// filter excludes nothing.
func (f *Filter) Decide(p string) Decision {
	if f == nil {
		return Decision{}
	}

	p = strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "/")
	base := path.Base(p)

	var d Decision
	for _, r := range f.rules {
		subject := p
		if r.basename {
			subject = base
		}
		if !r.matches(subject) {
			continue
		}
		d = Decision{Excluded: !r.negate, Reason: r.raw}
	}
	if d.Excluded {
		return d
	}

	for _, np := range f.predicates {
		if np.fn(p) {
			return Decision{Excluded: true, Reason: np.name}
		}
	}
	return d
}

func (r rule) matches(subject string) bool {
	if r.glob == subject {
		return true
	}
	if r.literal {
		return false
	}
	ok, err := doublestar.Match(r.glob, subject)
	return err == nil && ok
}

// Eligible reports whether path may be rewritten
func (f *Filter) Eligible(p string) bool {
	return !f.Decide(p).Excluded
}

// Patterns returns the raw patterns in evaluation order
func (f *Filter) Patterns() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.rules))
	for _, r := range f.rules {
		out = append(out, r.raw)
	}
	return out
}
