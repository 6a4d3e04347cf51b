package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// ErrChangesPending is returned by check when at least one file would change
var ErrChangesPending = errors.Base("files would change")

// NewCheckCmd creates a new check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	var diff bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check if any file would be rewritten",
		Long: `Check runs every pass without writing anything.
It fails when a file would change or could not be processed, which makes
it usable as a CI gate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, err := o.Session(func(so *operation.Options) {
				so.Diff = diff
				if len(args) > 0 {
					so.Files = args
				}
			})
			if err != nil {
				return errors.Errorf("creating session: %w", err)
			}

			logger := startSession(ctx, o, true)
			defer logger.EndSession(ctx)

			pending, report, err := session.Check(ctx)
			if report != nil {
				if perr := printReport(ctx, report); perr != nil {
					return errors.Errorf("printing report: %w", perr)
				}
			}
			if err != nil {
				return errors.Errorf("checking files: %w", err)
			}
			if err := report.Err(); err != nil {
				return err
			}
			if pending {
				return errors.Errorf("%d of %d: %w", report.Changed, report.Total, ErrChangesPending)
			}

			logger.Success("Files are up to date")
			return nil
		},
	}

	cmd.Flags().BoolVar(&diff, "diff", true, "print a unified diff for each file that would change")

	return cmd
}
