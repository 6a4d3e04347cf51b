package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/rewriterc/cmd/rewriterc/commands"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

const skipConfig = "skip-config"

// rootFlags holds persistent flags. Defaults come from the environment
// (REWRITERC_CONFIG, REWRITERC_ROOT, REWRITERC_DEBUG), which .env may set.
type rootFlags struct {
	configFile string
	root       string
	debug      bool
}

func defaultFlags() rootFlags {
	f := rootFlags{
		configFile: ".rewriterc.yaml",
		root:       os.Getenv("REWRITERC_ROOT"),
	}
	if v := os.Getenv("REWRITERC_CONFIG"); v != "" {
		f.configFile = v
	}
	if v, err := strconv.ParseBool(os.Getenv("REWRITERC_DEBUG")); err == nil {
		f.debug = v
	}
	return f
}

// newRootCmd wires the command tree. Config is loaded once flags are parsed,
// before any command that needs it runs.
func newRootCmd(console io.Writer) *cobra.Command {
	flags := defaultFlags()
	ro := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "rewriterc",
		Short: "Rule-based source rewriting",
		Long: `rewriterc applies ordered regex rules to a tree of source files.
Rules are grouped into passes, each with its own exclusions and fix-ups,
and files are only written when their content actually changed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd, flags.debug)

			ctx = log.NewContext(ctx, log.New(cmd.OutOrStdout(), consoleLevel(flags.debug)))
			cmd.SetContext(ctx)

			if cmd.Annotations[skipConfig] != "" {
				return nil
			}
			return loadRootOpts(cmd, flags, ro)
		},
	}
	rootCmd.SetOut(console)

	rootCmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", flags.configFile, "config file path")
	rootCmd.PersistentFlags().StringVarP(&flags.root, "root", "r", flags.root, "override the root directory to rewrite")
	rootCmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", flags.debug, "enable debug logging")

	rootCmd.AddCommand(
		commands.NewRunCmd(ro),
		commands.NewCheckCmd(ro),
		commands.NewCleanCmd(ro),
		newVersionCmd(),
	)

	return rootCmd
}

// loadRootOpts loads the config, resolves the root and compiles the passes
func loadRootOpts(cmd *cobra.Command, flags rootFlags, ro *opts.RootOpts) error {
	cfg, err := config.Load(cmd.Context(), flags.configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	root := cfg.RootDir()
	if flags.root != "" {
		root = flags.root
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return errors.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return errors.Errorf("checking root: %w", err)
	}
	if !info.IsDir() {
		return errors.Errorf("root %s is not a directory", root)
	}

	options, err := cfg.Build(osfs.New(root))
	if err != nil {
		return errors.Errorf("building passes: %w", err)
	}

	ro.Config = cfg
	ro.Options = options
	ro.Root = root
	return nil
}

// setupLogging configures zerolog based on flags
func setupLogging(cmd *cobra.Command, debug bool) context.Context {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger.WithContext(cmd.Context())
}

func consoleLevel(debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}
