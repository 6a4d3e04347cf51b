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
	"bytes"
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/diff"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 📄 processFile runs one read-modify-write cycle. It never returns an
// error; failures land on the result.
func (s *Session) processFile(ctx context.Context, p string) *FileResult {
	logger := zerolog.Ctx(ctx).With().Str("file", p).Logger()
	res := &FileResult{Path: p}

	// exclusion is decided on the path alone, before anything is opened
	active := make([]Pass, 0, len(s.opts.Passes))
	for _, pass := range s.opts.Passes {
		d := pass.Exclude.Decide(p)
		if d.Excluded {
			logger.Debug().Str("pass", pass.Name).Str("pattern", d.Reason).Msg("skipped: excluded")
			res.ExcludedBy = append(res.ExcludedBy, pass.Name+": "+d.Reason)
			continue
		}
		active = append(active, pass)
	}
	if len(active) == 0 {
		res.Outcome = status.OutcomeSkipped
		return res
	}

	content, err := s.status.ReadFile(ctx, p)
	if err != nil {
		return res.fail(errors.Errorf("reading %s: %w", p, err))
	}
	res.Original = content

	modified, err := s.applyPasses(ctx, p, content, active, res)
	if err != nil {
		return res.fail(err)
	}
	res.Modified = modified
	res.Changed = !bytes.Equal(content, modified)

	if !res.Changed {
		res.Outcome = status.OutcomeUnchanged
		if len(res.NoContext) > 0 {
			res.Outcome = status.OutcomeNoContext
		}
		return res
	}

	if s.opts.VerifyIdempotence {
		again, err := s.applyPasses(ctx, p, modified, active, nil)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("idempotence check failed")
			res.NotIdempotent = true
		case !bytes.Equal(again, modified):
			logger.Warn().Msg("rules are not idempotent for this file; a second run would change it again")
			res.NotIdempotent = true
		}
	}

	res.Stats = diff.Compute(content, modified)
	if s.opts.DryRun || s.opts.Diff {
		patch, err := diff.Unified(p, content, modified)
		if err != nil {
			logger.Warn().Err(err).Msg("could not render diff")
		}
		res.Diff = patch
	}

	res.Outcome = status.OutcomeChanged
	if s.opts.DryRun {
		return res
	}

	if err := s.status.WriteFileAtomic(ctx, p, modified); err != nil {
		return res.fail(errors.Errorf("writing %s: %w", p, err))
	}
	return res
}

// applyPasses runs each active pass over the running content. Rule names
// are recorded on res when it is non-nil.
func (s *Session) applyPasses(ctx context.Context, p string, content []byte, passes []Pass, res *FileResult) ([]byte, error) {
	current := content
	for _, pass := range passes {
		r, err := pass.Table.Apply(ctx, p, current, s.opts.Resolver)
		if err != nil {
			return nil, errors.Errorf("pass %s: %w", pass.Name, err)
		}
		if res != nil {
			res.ReplacementCount += r.ReplacementCount
			res.Applied = append(res.Applied, r.Applied...)
			res.Guarded = append(res.Guarded, r.Guarded...)
			res.NoContext = append(res.NoContext, r.NoContext...)
		}
		current = r.ModifiedContent
	}
	return current, nil
}

func (r *FileResult) fail(err error) *FileResult {
	r.Outcome = status.OutcomeFailed
	r.Err = err
	r.Changed = false
	return r
}
