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

package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		want   Stats
	}{
		{
			name:   "equal",
			before: "same",
			after:  "same",
			want:   Stats{},
		},
		{
			name:   "insertion",
			before: "abc",
			after:  "abXc",
			want:   Stats{Insertions: 1, Edits: 1},
		},
		{
			name:   "deletion",
			before: "abc",
			after:  "ac",
			want:   Stats{Deletions: 1, Edits: 1},
		},
		{
			name:   "multibyte_counts_runes",
			before: "a",
			after:  "aé",
			want:   Stats{Insertions: 1, Edits: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute([]byte(tt.before), []byte(tt.after)))
		})
	}
}

func TestStats_String(t *testing.T) {
	assert.Equal(t, "+3 -1", Stats{Insertions: 3, Deletions: 1}.String())
}

func TestUnified(t *testing.T) {
	t.Run("equal_content_is_empty", func(t *testing.T) {
		got, err := Unified("x.js", []byte("a\n"), []byte("a\n"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("single_line_change", func(t *testing.T) {
		got, err := Unified("pages/x.js", []byte("a\nb\nc\n"), []byte("a\nB\nc\n"))
		require.NoError(t, err)
		assert.Contains(t, got, "--- a/pages/x.js\n")
		assert.Contains(t, got, "+++ b/pages/x.js\n")
		assert.Contains(t, got, "@@ -1,3 +1,3 @@\n")
		assert.Contains(t, got, "-b\n")
		assert.Contains(t, got, "+B\n")
		assert.Contains(t, got, " a\n")
	})

	t.Run("unterminated_last_line", func(t *testing.T) {
		got, err := Unified("x.js", []byte("bg-white"), []byte("bg-card"))
		require.NoError(t, err)
		assert.Contains(t, got, "-bg-white\n")
		assert.Contains(t, got, "+bg-card\n")
	})
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{}, splitLines(""))
	assert.Equal(t, []string{"a\n", "b\n"}, splitLines("a\nb\n"))
	assert.Equal(t, []string{"a\n", "b\n"}, splitLines("a\nb"))
}
