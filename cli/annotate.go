package cli

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"text2phenotype.com/negex/pipeline"
	"text2phenotype.com/negex/termset"
	"text2phenotype.com/negex/types"
)

var errNoConfiguration = errors.New("one of --config-dir or --termset is required")

type annotateOptions struct {
	configDir        string
	termSet          string
	input            string
	segmentSentences bool
}

func newAnnotateCommand() *cobra.Command {
	opts := &annotateOptions{}

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Negate the entities of a request document",
		Long: "Reads a JSON request (or plain text) from --input or stdin and prints the\n" +
			"negation results of every configuration as JSON.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.configDir, "config-dir", "", "directory of *.yaml configurations")
	flags.StringVar(&opts.termSet, "termset", "", fmt.Sprintf("built-in termset profile, one of %v", termset.Profiles()))
	flags.StringVarP(&opts.input, "input", "i", "", "request file (default: stdin)")
	flags.BoolVar(&opts.segmentSentences, "segment-sentences", true, "split text requests into sentences")
	cmd.MarkFlagsMutuallyExclusive("config-dir", "termset")
	return cmd
}

func runAnnotate(cmd *cobra.Command, opts *annotateOptions) error {
	cfgs, err := opts.configurations()
	if err != nil {
		return err
	}
	ppln, err := pipeline.NewPipeline(pipeline.Params{
		Configurations:   cfgs,
		SegmentSentences: opts.segmentSentences,
	})
	if err != nil {
		return err
	}

	data, err := readInput(cmd.InOrStdin(), opts.input)
	if err != nil {
		return err
	}
	request := pipeline.DecodeRequest(data)
	if len(request.Tid) == 0 {
		request.Tid = uuid.New().String()
	}

	result, ok := <-ppln(request)
	if !ok {
		return errors.New("pipeline returned no result")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), result)
	return err
}

func (opts *annotateOptions) configurations() ([]types.Configuration, error) {
	switch {
	case len(opts.configDir) > 0:
		cfgs, err := types.LoadConfigurations(opts.configDir)
		if err != nil {
			return nil, err
		}
		if len(cfgs) == 0 {
			return nil, fmt.Errorf("no valid configurations in %s", opts.configDir)
		}
		return cfgs, nil
	case len(opts.termSet) > 0:
		return []types.Configuration{{
			Name:    opts.termSet,
			TermSet: termset.Source{Profile: opts.termSet},
		}}, nil
	}
	return nil, errNoConfiguration
}

func readInput(stdin io.Reader, filePath string) ([]byte, error) {
	if len(filePath) == 0 || filePath == "-" {
		return ioutil.ReadAll(stdin)
	}
	return ioutil.ReadFile(filePath)
}
