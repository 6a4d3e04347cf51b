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
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🧹 Clean removes temp files an interrupted atomic write left next to the
// files it was replacing. It honors Recursive and returns the removed paths.
func (s *Session) Clean(ctx context.Context) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	all, err := s.status.ListCandidates(ctx, nil, s.opts.Recursive)
	if err != nil {
		return nil, errors.Errorf("listing files: %w", err)
	}

	var removed []string
	for _, p := range all {
		if !isTempLeftover(path.Base(p)) {
			continue
		}
		if err := s.opts.FS.Remove(p); err != nil {
			return removed, errors.Errorf("removing %s: %w", p, err)
		}
		logger.Info().Str("path", p).Msg("🗑️ removed leftover temp file")
		removed = append(removed, p)
	}
	return removed, nil
}

// isTempLeftover matches the ".<name>.tmp-<suffix>" files WriteFileAtomic creates
func isTempLeftover(base string) bool {
	if !strings.HasPrefix(base, ".") {
		return false
	}
	i := strings.LastIndex(base, ".tmp-")
	return i > 1 && i+len(".tmp-") < len(base)
}
