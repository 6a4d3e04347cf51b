package operation

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Check reports whether any file would be rewritten. It runs the session as
// a dry run regardless of how it was configured.
func (s *Session) Check(ctx context.Context) (bool, *Report, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Msg("checking for pending rewrites")

	dry := *s
	dry.opts.DryRun = true

	report, err := dry.Run(ctx)
	if err != nil {
		return false, report, errors.Errorf("checking files: %w", err)
	}

	if report.Changed > 0 {
		logger.Debug().Strs("files", report.ChangedFiles()).Msg("files need rewriting")
		return true, report, nil
	}

	logger.Debug().Msg("no changes needed")
	return false, report, nil
}
