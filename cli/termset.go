package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"text2phenotype.com/negex/termset"
)

func newTermSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "termset",
		Short: "Inspect and validate termsets",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:       "show NAME",
			Short:     "Print a built-in profile as YAML",
			Args:      cobra.ExactArgs(1),
			ValidArgs: termset.Profiles(),
			RunE: func(cmd *cobra.Command, args []string) error {
				ts, err := termset.FromProfile(args[0])
				if err != nil {
					return err
				}
				buf, err := termset.Marshal(ts)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(buf)
				return err
			},
		},
		&cobra.Command{
			Use:   "check PATH",
			Short: "Validate a termset YAML file or a directory of <category>.txt lists",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ts, err := loadTermSet(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: ok (version %x)\n", args[0], ts.Version())
				for _, category := range termset.Categories() {
					fmt.Fprintf(out, "  %-12s %d\n", category, len(ts.Phrases(category)))
				}
				return nil
			},
		},
	)
	return cmd
}

func loadTermSet(filePath string) (*termset.TermSet, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return termset.LoadDir(filePath)
	}
	return termset.Load(filePath)
}
