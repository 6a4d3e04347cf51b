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

package status

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

// 🔧 failingRename wraps a filesystem and refuses every rename
type failingRename struct {
	billy.Filesystem
}

func (f failingRename) Rename(oldpath, newpath string) error {
	return errors.New("rename refused")
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func seed(t *testing.T, files map[string]string) billy.Filesystem {
	fs := memfs.New()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644), "seeding %s", name)
	}
	return fs
}

func readAll(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	f, err := fs.Open(name)
	require.NoError(t, err, "opening %s", name)
	defer f.Close()
	content, err := io.ReadAll(f)
	require.NoError(t, err, "reading %s", name)
	return string(content)
}

func TestManager_ListCandidates(t *testing.T) {
	files := map[string]string{
		"b.js":              "",
		"a.js":              "",
		"c.ts":              "",
		"readme.md":         "",
		"admin/x.js":        "",
		"admin/deep/y.js":   "",
		"tools/z.jsx":       "",
		"tools/notes.txt":   "",
		"tools/nested/q.js": "",
	}

	tests := []struct {
		name       string
		extensions []string
		recursive  bool
		want       []string
	}{
		{
			name:       "top_level_only",
			extensions: []string{".js"},
			want:       []string{"a.js", "b.js"},
		},
		{
			name:       "recursive",
			extensions: []string{".js"},
			recursive:  true,
			want:       []string{"a.js", "admin/deep/y.js", "admin/x.js", "b.js", "tools/nested/q.js"},
		},
		{
			name:       "several_extensions",
			extensions: []string{".js", ".jsx", ".ts"},
			recursive:  true,
			want:       []string{"a.js", "admin/deep/y.js", "admin/x.js", "b.js", "c.ts", "tools/nested/q.js", "tools/z.jsx"},
		},
		{
			name: "no_extension_filter",
			want: []string{"a.js", "b.js", "c.ts", "readme.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := New(seed(t, files))
			got, err := mgr.ListCandidates(testContext(t), tt.extensions, tt.recursive)
			require.NoError(t, err, "listing should succeed")
			assert.Equal(t, tt.want, got, "candidates should be sorted and filtered")
		})
	}
}

func TestManager_ReadWrite(t *testing.T) {
	ctx := testContext(t)
	fs := seed(t, map[string]string{"pages/a.js": "old"})
	mgr := New(fs)

	content, err := mgr.ReadFile(ctx, "pages/a.js")
	require.NoError(t, err, "reading should succeed")
	assert.Equal(t, "old", string(content))

	require.NoError(t, mgr.WriteFileAtomic(ctx, "pages/a.js", []byte("new")), "writing should succeed")

	assert.Equal(t, "new", readAll(t, fs, "pages/a.js"), "content should be replaced")

	entries, err := fs.ReadDir("pages")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file should not be left behind")
	assert.Equal(t, "a.js", entries[0].Name())
}

func TestManager_ReadMissing(t *testing.T) {
	mgr := New(seed(t, map[string]string{"a.js": ""}))
	_, err := mgr.ReadFile(testContext(t), "missing.js")
	require.Error(t, err, "reading a missing file should fail")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestManager_WriteAtomicKeepsOriginalOnFailure(t *testing.T) {
	ctx := testContext(t)
	base := seed(t, map[string]string{"a.js": "original"})
	mgr := New(failingRename{base})

	err := mgr.WriteFileAtomic(ctx, "a.js", []byte("replacement"))
	require.Error(t, err, "write should fail when rename fails")
	assert.Contains(t, err.Error(), "renaming temp file")

	assert.Equal(t, "original", readAll(t, base, "a.js"), "original should be intact")

	entries, err := base.ReadDir(".")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file should be removed")
}

func TestManager_Tracking(t *testing.T) {
	ctx := testContext(t)
	mgr := New(memfs.New())

	mgr.StartOperation(ctx, 3)
	mgr.TrackFile(ctx, "b.js", FileInfo{Path: "b.js", Status: OutcomeChanged, Checksum: Checksum([]byte("x"))})
	mgr.UpdateProgress(ctx, 1)
	mgr.TrackFile(ctx, "a.js", FileInfo{Path: "a.js", Status: OutcomeSkipped, Detail: "difal.js"})
	mgr.UpdateProgress(ctx, 2)
	mgr.TrackFile(ctx, "c.js", FileInfo{Path: "c.js", Status: OutcomeFailed, Error: errors.New("boom")})
	mgr.UpdateProgress(ctx, 3)
	mgr.FinishOperation(ctx)

	info, err := mgr.GetFileInfo(ctx, "b.js")
	require.NoError(t, err)
	assert.Equal(t, OutcomeChanged, info.Status)

	_, err = mgr.GetFileInfo(ctx, "zzz.js")
	require.Error(t, err, "untracked file should error")

	files, err := mgr.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "a.js", files[0].Path, "files should be sorted by path")
	assert.Equal(t, "c.js", files[2].Path)
}

func TestOutcome_String(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeChanged, "changed"},
		{OutcomeUnchanged, "unchanged"},
		{OutcomeSkipped, "skipped"},
		{OutcomeFailed, "failed"},
		{OutcomeNoContext, "no-context"},
		{OutcomeUnknown, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.String())
		})
	}
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Checksum(nil))
	assert.NotEqual(t, Checksum([]byte("a")), Checksum([]byte("b")))
}
