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

// Package diff renders what a rewrite did to a file: unified patches for
// review and character-level change counts for the report.
package diff

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gitlab.com/tozd/go/errors"
)

const defaultContext = 3

// 📊 Stats counts characters inserted and deleted by a rewrite
type Stats struct {
	Insertions int
	Deletions  int
	// Edits is the number of non-equal diff segments
	Edits int
}

func (s Stats) String() string {
	return fmt.Sprintf("+%d -%d", s.Insertions, s.Deletions)
}

// Compute returns character-level change stats between before and after
func Compute(before, after []byte) Stats {
	var s Stats
	if string(before) == string(after) {
		return s
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(before), string(after), false)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			s.Insertions += utf8.RuneCountInString(d.Text)
			s.Edits++
		case diffmatchpatch.DiffDelete:
			s.Deletions += utf8.RuneCountInString(d.Text)
			s.Edits++
		}
	}
	return s
}

// 📝 Unified produces a unified patch with a/ and b/ prefixed headers.
// An empty string means the contents are equal.
func Unified(path string, before, after []byte) (string, error) {
	if string(before) == string(after) {
		return "", nil
	}

	u := difflib.UnifiedDiff{
		A:        splitLines(string(before)),
		B:        splitLines(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  defaultContext,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", errors.Errorf("rendering diff for %s: %w", path, err)
	}
	return s, nil
}

// splitLines keeps line endings and terminates a final unterminated line so
// hunks render one line per row.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}
