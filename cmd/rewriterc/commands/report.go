package commands

import (
	"context"

	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/operation"
)

// printReport writes one line per file, any patches, and the summary table
func printReport(ctx context.Context, report *operation.Report) error {
	logger := log.FromContext(ctx)
	for _, f := range report.Files {
		logger.LogFileOperation(ctx, log.FileOperation{
			Path:         f.Path,
			Outcome:      f.Outcome,
			Detail:       f.Detail(),
			Replacements: f.ReplacementCount,
		})
		if f.Diff != "" {
			logger.Diff(f.Diff)
			logger.LogNewline()
		}
	}

	return logger.Summary(log.Summary{
		Total:     report.Total,
		Changed:   report.Changed,
		Unchanged: report.Unchanged,
		Skipped:   report.Skipped,
		NoContext: report.NoContext,
		Failed:    report.Failed,
		DryRun:    report.DryRun,
	})
}

func startSession(ctx context.Context, o *opts.RootOpts, dryRun bool) *log.Logger {
	logger := log.FromContext(ctx)
	if dryRun {
		logger.Header("checking files")
	} else {
		logger.Header("rewriting files")
	}
	logger.StartSession(ctx, log.SessionOperation{
		Root:   o.Root,
		Config: o.Config.Location(),
		Passes: o.PassNames(),
		DryRun: dryRun,
	})
	return logger
}
