package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"text2phenotype.com/negex/logger"
)

// Version is set at build time through ldflags.
var Version = "dev"

type rootOptions struct {
	logLevel string
}

// NewRootCommand builds negexctl with all of its subcommands.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "negexctl",
		Short:   "Negation detection over annotated clinical text",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetupLogging()
			zerolog.SetGlobalLevel(logger.ParseLevel(opts.logLevel))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", logger.LOG_LEVEL_WARN, "log level (DEBUG, INFO, WARN, ERROR)")

	cmd.AddCommand(
		newAnnotateCommand(),
		newTermSetCommand(),
	)
	return cmd
}
