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
	"fmt"
	"strings"

	"github.com/walteh/rewriterc/pkg/diff"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 📄 FileResult is what one session did to one file
type FileResult struct {
	Path    string
	Outcome status.Outcome

	// Original and Modified are nil for skipped files
	Original []byte
	Modified []byte
	Changed  bool

	ReplacementCount int
	Applied          []string
	Guarded          []string
	NoContext        []string

	// ExcludedBy lists "pass: pattern" for every pass whose filter matched
	ExcludedBy []string

	// NotIdempotent is set when a second application would change the file again
	NotIdempotent bool

	Stats diff.Stats
	// Diff is a unified patch, set on dry runs or when diffs were requested
	Diff string

	Err error
}

// Detail is a short human summary used in console rows
func (r *FileResult) Detail() string {
	switch r.Outcome {
	case status.OutcomeSkipped:
		return "excluded by " + strings.Join(r.ExcludedBy, ", ")
	case status.OutcomeFailed:
		if r.Err != nil {
			return r.Err.Error()
		}
		return ""
	case status.OutcomeNoContext:
		return "no path context for " + strings.Join(r.NoContext, ", ")
	case status.OutcomeChanged:
		d := fmt.Sprintf("%d replacements (%s)", r.ReplacementCount, r.Stats)
		if r.NotIdempotent {
			d += " not idempotent"
		}
		return d
	default:
		return ""
	}
}

func (r *FileResult) info() status.FileInfo {
	content := r.Original
	if r.Changed {
		content = r.Modified
	}
	return status.FileInfo{
		Path:     r.Path,
		Status:   r.Outcome,
		Size:     int64(len(content)),
		Checksum: status.Checksum(content),
		Detail:   r.Detail(),
		Error:    r.Err,
	}
}

// 📊 Report aggregates a session. Outcome counts always sum to Total.
type Report struct {
	DryRun bool

	Total     int
	Changed   int
	Unchanged int
	Skipped   int
	Failed    int
	NoContext int

	// NotIdempotent counts changed files flagged by idempotence verification
	NotIdempotent int

	Files []*FileResult
}

func (r *Report) add(f *FileResult) {
	r.Total++
	switch f.Outcome {
	case status.OutcomeChanged:
		r.Changed++
	case status.OutcomeUnchanged:
		r.Unchanged++
	case status.OutcomeSkipped:
		r.Skipped++
	case status.OutcomeFailed:
		r.Failed++
	case status.OutcomeNoContext:
		r.NoContext++
	}
	if f.NotIdempotent {
		r.NotIdempotent++
	}
	r.Files = append(r.Files, f)
}

// ChangedFiles lists paths that were (or on a dry run would be) rewritten
func (r *Report) ChangedFiles() []string {
	return r.filter(status.OutcomeChanged)
}

// FailedFiles lists paths that failed
func (r *Report) FailedFiles() []string {
	return r.filter(status.OutcomeFailed)
}

func (r *Report) filter(o status.Outcome) []string {
	var out []string
	for _, f := range r.Files {
		if f.Outcome == o {
			out = append(out, f.Path)
		}
	}
	return out
}

// File returns the result for path, or nil
func (r *Report) File(path string) *FileResult {
	for _, f := range r.Files {
		if f.Path == path {
			return f
		}
	}
	return nil
}

// Summary renders "changed/total" plus the remaining counts
func (r *Report) Summary() string {
	verb := "changed"
	if r.DryRun {
		verb = "would change"
	}
	return fmt.Sprintf("%d/%d files %s (%d unchanged, %d skipped, %d no-context, %d failed)",
		r.Changed, r.Total, verb, r.Unchanged, r.Skipped, r.NoContext, r.Failed)
}

// Err returns ErrFilesFailed when any file failed
func (r *Report) Err() error {
	if r.Failed == 0 {
		return nil
	}
	return errors.Errorf("%w: %s", ErrFilesFailed, strings.Join(r.FailedFiles(), ", "))
}
