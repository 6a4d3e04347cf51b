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
	"io"
	"os"
	"sync"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

// 🔧 recordingFS wraps a filesystem and records every open, write and rename
type recordingFS struct {
	billy.Filesystem

	mu       sync.Mutex
	opened   []string
	written  []string
	renamed  []string
	failOpen map[string]bool
	onOpen   func(name string)
}

func newRecordingFS(t *testing.T, files map[string]string) *recordingFS {
	t.Helper()
	fs := memfs.New()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644), "seeding %s", name)
	}
	return &recordingFS{Filesystem: fs, failOpen: map[string]bool{}}
}

func (r *recordingFS) record(list *[]string, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*list = append(*list, name)
}

func (r *recordingFS) Open(name string) (billy.File, error) {
	r.record(&r.opened, name)
	if r.onOpen != nil {
		r.onOpen(name)
	}
	if r.failOpen[name] {
		return nil, errors.New("permission denied")
	}
	return r.Filesystem.Open(name)
}

func (r *recordingFS) OpenFile(name string, flag int, perm os.FileMode) (billy.File, error) {
	r.record(&r.opened, name)
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		r.record(&r.written, name)
	}
	return r.Filesystem.OpenFile(name, flag, perm)
}

func (r *recordingFS) Create(name string) (billy.File, error) {
	r.record(&r.written, name)
	return r.Filesystem.Create(name)
}

func (r *recordingFS) TempFile(dir, prefix string) (billy.File, error) {
	r.record(&r.written, dir+"/"+prefix)
	return r.Filesystem.TempFile(dir, prefix)
}

func (r *recordingFS) Rename(from, to string) error {
	r.record(&r.renamed, to)
	return r.Filesystem.Rename(from, to)
}

func (r *recordingFS) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened, r.written, r.renamed = nil, nil, nil
}

func (r *recordingFS) content(t *testing.T, name string) string {
	t.Helper()
	f, err := r.Filesystem.Open(name)
	require.NoError(t, err, "opening %s", name)
	defer f.Close()
	b, err := io.ReadAll(f)
	require.NoError(t, err, "reading %s", name)
	return string(b)
}

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}
