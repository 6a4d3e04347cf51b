package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewRunCmd creates a new run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	var (
		dryRun bool
		diff   bool
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Apply the configured passes",
		Long: `Run applies every configured pass to the files under the root.
It will:
1. Enumerate candidate files (or use the files given as arguments)
2. Skip files excluded by every pass
3. Apply rules, then fix-ups, in order
4. Write files whose content changed, atomically`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, err := o.Session(func(so *operation.Options) {
				so.DryRun = dryRun
				so.Diff = diff
				so.VerifyIdempotence = verify
				if len(args) > 0 {
					so.Files = args
				}
			})
			if err != nil {
				return errors.Errorf("creating session: %w", err)
			}

			logger := startSession(ctx, o, dryRun)
			defer logger.EndSession(ctx)

			report, err := session.Run(ctx)
			if report != nil {
				if perr := printReport(ctx, report); perr != nil {
					return errors.Errorf("printing report: %w", perr)
				}
			}
			if err != nil {
				return errors.Errorf("running session: %w", err)
			}

			if report.NotIdempotent > 0 {
				logger.Warningf("%d files change again on a second run", report.NotIdempotent)
			}

			return report.Err()
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().BoolVar(&diff, "diff", false, "print a unified diff for each changed file")
	cmd.Flags().BoolVar(&verify, "verify", false, "re-apply the passes to rewritten content and flag non-idempotent files")

	return cmd
}
