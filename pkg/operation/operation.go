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

package operation

import (
	"context"

	"github.com/go-git/go-billy/v5"
	"github.com/walteh/rewriterc/pkg/exclude"
	"github.com/walteh/rewriterc/pkg/status"
	"github.com/walteh/rewriterc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ErrFilesFailed is returned by Report.Err when at least one file failed
var ErrFilesFailed = errors.Base("one or more files failed")

// 🎯 Operator defines the rewrite operations the CLI drives
type Operator interface {
	// Run rewrites every eligible file and reports what happened
	Run(ctx context.Context) (*Report, error)
	// Check is a dry run that reports whether any file would change
	Check(ctx context.Context) (bool, *Report, error)
	// Clean removes temp files left behind by interrupted writes
	Clean(ctx context.Context) ([]string, error)
}

// 📦 Pass is one rule table with its own exclusion filter. Passes run in
// order over each file before a single write.
type Pass struct {
	Name    string
	Table   *text.Table
	Exclude *exclude.Filter
}

// 🔧 Options contains configuration for a session
type Options struct {
	// FS is rooted at the directory being rewritten
	FS billy.Filesystem
	// Extensions filters enumerated files, ".js" style; empty means all
	Extensions []string
	// Recursive descends into subdirectories during enumeration
	Recursive bool
	// Files replaces enumeration with an explicit root-relative list
	Files []string
	// Passes are applied in order
	Passes []Pass
	// Resolver fills {{context}} for rules bound to a path-context table
	Resolver text.ContextResolver
	// DryRun never writes; changed files carry a unified diff
	DryRun bool
	// Diff attaches unified diffs to changed files on real runs too
	Diff bool
	// VerifyIdempotence re-applies passes to rewritten content and flags
	// files that would change again
	VerifyIdempotence bool
}

// 🏭 New validates options and creates a session. Configuration problems
// surface here, before any file is read.
func New(opts Options) (*Session, error) {
	if opts.FS == nil {
		return nil, errors.Errorf("filesystem is required")
	}
	if len(opts.Passes) == 0 {
		return nil, errors.Errorf("at least one pass is required")
	}

	seen := map[string]bool{}
	for i, p := range opts.Passes {
		if p.Table == nil {
			return nil, errors.Errorf("pass %d (%s): rule table is required", i, p.Name)
		}
		if p.Name == "" {
			return nil, errors.Errorf("pass %d: name is required", i)
		}
		if seen[p.Name] {
			return nil, errors.Errorf("duplicate pass name %q", p.Name)
		}
		seen[p.Name] = true
		if contexts := p.Table.Contexts(); len(contexts) > 0 && opts.Resolver == nil {
			return nil, errors.Errorf("pass %s: rules use path contexts %v but no resolver is configured", p.Name, contexts)
		}
	}

	return &Session{
		opts:   opts,
		status: status.New(opts.FS),
	}, nil
}

// 🎮 Session implements Operator over one rewrite root
type Session struct {
	opts   Options
	status *status.Manager
}

// Status exposes the outcome tracker for the last run
func (s *Session) Status() status.StatusReporter {
	return s.status
}

var _ Operator = (*Session)(nil)
