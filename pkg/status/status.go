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
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 Outcome is what a rewrite session did to one file
type Outcome int

const (
	OutcomeUnknown   Outcome = iota
	OutcomeChanged           // content differed and was (or would be) written
	OutcomeUnchanged         // rules ran, nothing to write
	OutcomeSkipped           // excluded before any read
	OutcomeFailed            // read, rewrite or write error
	OutcomeNoContext         // no path-context entry matched
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeChanged:
		return "changed"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	case OutcomeNoContext:
		return "no-context"
	default:
		return "unknown"
	}
}

// 📄 FileInfo contains what was observed about a file
type FileInfo struct {
	Path     string  // Root-relative path, forward slashes
	Status   Outcome // Session outcome
	Size     int64   // Size of the content that is now on disk
	Checksum string  // SHA-256 of that content
	Detail   string  // Exclusion reason, rule counts and similar
	Error    error   // Any error associated with this file
}

// 💾 FileStore is the narrow I/O surface a rewrite session needs
type FileStore interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
	ListCandidates(ctx context.Context, extensions []string, recursive bool) ([]string, error)
}

// 📈 StatusReporter tracks file outcomes and reports progress
type StatusReporter interface {
	TrackFile(ctx context.Context, path string, info FileInfo)
	GetFileInfo(ctx context.Context, path string) (FileInfo, error)
	ListFiles(ctx context.Context) ([]FileInfo, error)

	StartOperation(ctx context.Context, total int)
	UpdateProgress(ctx context.Context, processed int)
	FinishOperation(ctx context.Context)
}

// 🔧 Manager implements both FileStore and StatusReporter on top of a
// billy filesystem rooted at the rewrite root
type Manager struct {
	fs        billy.Filesystem
	formatter FileFormatter

	mu    sync.RWMutex
	files map[string]FileInfo

	total     int
	processed int
}

// 🏭 New creates a new status manager. fs must already be rooted at the
// directory the session rewrites (osfs.New(root) or a memfs in tests).
func New(fs billy.Filesystem) *Manager {
	return &Manager{
		fs:        fs,
		formatter: NewDefaultFileFormatter(),
		files:     make(map[string]FileInfo),
	}
}

// Checksum generates a SHA-256 hash of the content
func Checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func clean(p string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
}

// FileStore interface implementation

func (m *Manager) ReadFile(ctx context.Context, p string) ([]byte, error) {
	f, err := m.fs.Open(clean(p))
	if err != nil {
		return nil, errors.Errorf("opening file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

// WriteFileAtomic writes content to a temp file in the same directory and
// renames it over path. The original is untouched when any step fails.
func (m *Manager) WriteFileAtomic(ctx context.Context, p string, content []byte) error {
	p = clean(p)

	mode := os.FileMode(0o644)
	if fi, err := m.fs.Stat(p); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := m.fs.TempFile(path.Dir(p), "."+path.Base(p)+".tmp-")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		m.fs.Remove(tempPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		m.fs.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}

	if ch, ok := m.fs.(billy.Change); ok {
		if err := ch.Chmod(tempPath, mode); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("path", p).Msg("could not carry file mode over")
		}
	}

	if err := m.fs.Rename(tempPath, p); err != nil {
		m.fs.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// ListCandidates returns root-relative paths of regular files whose
// extension is in extensions (all files when empty), sorted lexically.
func (m *Manager) ListCandidates(ctx context.Context, extensions []string, recursive bool) ([]string, error) {
	var out []string
	if err := m.walk(ctx, "", extensions, recursive, &out); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (m *Manager) walk(ctx context.Context, dir string, extensions []string, recursive bool, out *[]string) error {
	entries, err := m.fs.ReadDir(dirOrDot(dir))
	if err != nil {
		return errors.Errorf("reading directory %q: %w", dirOrDot(dir), err)
	}

	for _, e := range entries {
		p := path.Join(dir, e.Name())
		if e.IsDir() {
			if recursive {
				if err := m.walk(ctx, p, extensions, recursive, out); err != nil {
					return err
				}
			}
			continue
		}
		if !e.Mode().IsRegular() || !hasExtension(p, extensions) {
			continue
		}
		*out = append(*out, p)
	}
	return nil
}

func dirOrDot(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

func hasExtension(p string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	for _, ext := range extensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

// StatusReporter interface implementation

func (m *Manager) TrackFile(ctx context.Context, p string, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[p] = info

	logger := zerolog.Ctx(ctx)
	if info.Error != nil {
		logger.Error().Str("path", p).Err(info.Error).Msg(m.formatter.FormatError(info.Error))
		return
	}
	logger.Info().
		Str("path", p).
		Stringer("outcome", info.Status).
		Str("detail", info.Detail).
		Msg(m.formatter.FormatFileOperation(p, info.Status))
}

func (m *Manager) GetFileInfo(ctx context.Context, p string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[p]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", p)
	}
	return info, nil
}

// ListFiles returns tracked files sorted by path
func (m *Manager) ListFiles(ctx context.Context) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.files))
	for _, info := range m.files {
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	zerolog.Ctx(ctx).Debug().Int("total", total).Msg(m.formatter.FormatProgress(0, total))
}

func (m *Manager) UpdateProgress(ctx context.Context, processed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed = processed
	zerolog.Ctx(ctx).Debug().
		Int("processed", processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(processed, m.total))
}

func (m *Manager) FinishOperation(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	zerolog.Ctx(ctx).Debug().
		Int("processed", m.processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(m.processed, m.total))
}

var (
	_ FileStore      = (*Manager)(nil)
	_ StatusReporter = (*Manager)(nil)
)
