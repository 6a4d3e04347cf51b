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

// Package pathctx selects a replacement fragment from a file's directory
// ancestry, e.g. the relative import prefix matching the file's depth.
package pathctx

import (
	"path"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const (
	anywhere = "**"
	wildcard = "*"
)

// 📍 Entry maps a directory prefix to a fragment
type Entry struct {
	// Prefix is a slash separated run of directory names. It is anchored at
	// the root unless it starts with "**/". A "*" segment matches any name.
	Prefix   string
	Fragment string
}

type compiledEntry struct {
	segments []string
	anywhere bool
	fragment string
}

// 📚 Table is an ordered most-specific-first list of entries
type Table struct {
	name     string
	entries  []compiledEntry
	fallback *string
}

// NewTable compiles entries. fallback, when non-nil, is returned for paths no
// entry matches; otherwise such paths resolve to no match.
func NewTable(name string, entries []Entry, fallback *string) (*Table, error) {
	if name == "" {
		return nil, errors.New("context table name is required")
	}

	t := &Table{name: name, fallback: fallback}
	for i, e := range entries {
		ce, err := compileEntry(e)
		if err != nil {
			return nil, errors.Errorf("context %q entry %d: %w", name, i, err)
		}
		t.entries = append(t.entries, ce)
	}
	return t, nil
}

func compileEntry(e Entry) (compiledEntry, error) {
	p := strings.Trim(filepath.ToSlash(e.Prefix), "/")
	if p == "" {
		return compiledEntry{}, errors.New("prefix is required")
	}

	segs := strings.Split(p, "/")
	ce := compiledEntry{fragment: e.Fragment}
	if segs[0] == anywhere {
		ce.anywhere = true
		segs = segs[1:]
	}
	for _, s := range segs {
		switch s {
		case "", ".", "..", anywhere:
			return compiledEntry{}, errors.Errorf("invalid segment %q in prefix %q", s, e.Prefix)
		}
	}
	ce.segments = segs
	return ce, nil
}

// Name returns the table name
func (t *Table) Name() string {
	return t.name
}

// Resolve returns the fragment of the first entry matching the directory of
// path. path is relative to the rewrite root.
func (t *Table) Resolve(p string) (string, bool) {
	dirs := dirSegments(p)
	for _, e := range t.entries {
		if e.matches(dirs) {
			return e.fragment, true
		}
	}
	if t.fallback != nil {
		return *t.fallback, true
	}
	return "", false
}

func (e compiledEntry) matches(dirs []string) bool {
	if !e.anywhere {
		return hasRunAt(dirs, e.segments, 0)
	}
	for i := 0; i+len(e.segments) <= len(dirs); i++ {
		if hasRunAt(dirs, e.segments, i) {
			return true
		}
	}
	return false
}

func hasRunAt(dirs, segs []string, at int) bool {
	if at+len(segs) > len(dirs) {
		return false
	}
	for j, s := range segs {
		if s != wildcard && s != dirs[at+j] {
			return false
		}
	}
	return true
}

func dirSegments(p string) []string {
	dir := path.Dir(path.Clean("/" + filepath.ToSlash(p)))
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}

// 🧭 Resolver holds the named tables of one session
type Resolver struct {
	tables map[string]*Table
}

// NewResolver indexes tables by name; names must be unique
func NewResolver(tables ...*Table) (*Resolver, error) {
	r := &Resolver{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		if _, dup := r.tables[t.name]; dup {
			return nil, errors.Errorf("duplicate context table %q", t.name)
		}
		r.tables[t.name] = t
	}
	return r, nil
}

// Has reports whether a table with the given name exists
func (r *Resolver) Has(name string) bool {
	_, ok := r.tables[name]
	return ok
}

// Resolve looks up path in the named table. An unknown table is a no match.
func (r *Resolver) Resolve(table, p string) (string, bool) {
	t, ok := r.tables[table]
	if !ok {
		return "", false
	}
	return t.Resolve(p)
}
