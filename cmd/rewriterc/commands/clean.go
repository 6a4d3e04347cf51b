package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// NewCleanCmd creates a new clean command
func NewCleanCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove temp files left by interrupted writes",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := o.Session(nil)
			if err != nil {
				return errors.Errorf("creating session: %w", err)
			}

			logger := log.FromContext(cmd.Context())
			logger.Header("cleaning temp files")

			removed, err := session.Clean(cmd.Context())
			for _, p := range removed {
				logger.Infof("🧹 Removed %s", p)
			}
			if err != nil {
				return errors.Errorf("cleaning: %w", err)
			}

			if len(removed) == 0 {
				logger.Success("Nothing to clean")
				return nil
			}
			logger.Successf("Removed %d temp files", len(removed))
			return nil
		},
	}

	return cmd
}
