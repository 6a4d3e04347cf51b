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
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🏃 Run processes every candidate file in order. Per-file failures are
// recorded in the report and do not stop the session; the returned error is
// reserved for enumeration failures and cancellation. Cancellation is only
// observed between files.
func (s *Session) Run(ctx context.Context) (*Report, error) {
	logger := zerolog.Ctx(ctx)

	paths, err := s.candidates(ctx)
	if err != nil {
		return nil, errors.Errorf("enumerating files: %w", err)
	}

	logger.Debug().
		Int("files", len(paths)).
		Int("passes", len(s.opts.Passes)).
		Bool("dry_run", s.opts.DryRun).
		Msg("starting rewrite session")

	report := &Report{DryRun: s.opts.DryRun}

	s.status.StartOperation(ctx, len(paths))
	defer s.status.FinishOperation(ctx)

	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return report, errors.Errorf("session cancelled after %d of %d files: %w", i, len(paths), err)
		}

		res := s.processFile(ctx, p)
		report.add(res)

		s.status.TrackFile(ctx, p, res.info())
		s.status.UpdateProgress(ctx, i+1)
	}

	logger.Debug().Str("summary", report.Summary()).Msg("rewrite session complete")
	return report, nil
}

// candidates returns the explicit file list when configured, otherwise the
// enumerated files. Both are sorted and de-duplicated.
func (s *Session) candidates(ctx context.Context) ([]string, error) {
	if len(s.opts.Files) == 0 {
		return s.status.ListCandidates(ctx, s.opts.Extensions, s.opts.Recursive)
	}

	seen := map[string]bool{}
	out := make([]string, 0, len(s.opts.Files))
	for _, f := range s.opts.Files {
		p := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(f, "\\", "/")), "/")
		if p == "" {
			return nil, errors.Errorf("invalid file entry %q", f)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
