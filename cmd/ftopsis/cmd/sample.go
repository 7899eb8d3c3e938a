package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
	"github.com/MikeSquared-Agency/Ftopsis/internal/input"
	"github.com/MikeSquared-Agency/Ftopsis/internal/sample"
)

func parseKind(s string) (fuzzy.Kind, error) {
	switch strings.ToLower(s) {
	case "triangular", "tri", "3":
		return fuzzy.KindTriangular, nil
	case "trapezoidal", "trap", "4":
		return fuzzy.KindTrapezoidal, nil
	}
	return 0, fmt.Errorf("unknown fuzzy kind %q", s)
}

func newSampleCommand() *cobra.Command {
	opts := sample.DefaultOptions()
	var kind, mode, output string

	c := &cobra.Command{
		Use:   "sample",
		Short: "Generate a synthetic decision document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if opts.Kind, err = parseKind(kind); err != nil {
				return err
			}
			if opts.Mode, err = input.ParseMode(mode); err != nil {
				return err
			}
			if opts.Mode == "" {
				return fmt.Errorf("sample mode must be rank or classify")
			}

			data, err := sample.Generate(opts)
			if err != nil {
				return err
			}
			data = append(data, '\n')
			if output != "" {
				return os.WriteFile(output, data, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	c.Flags().StringVarP(&kind, "kind", "k", "triangular", "fuzzy number kind (triangular, trapezoidal)")
	c.Flags().StringVarP(&mode, "mode", "m", string(input.ModeClassify), "document layout (rank, classify)")
	c.Flags().IntVarP(&opts.Elements, "elements", "n", opts.Elements, "number of alternatives")
	c.Flags().IntVarP(&opts.Criteria, "criteria", "c", opts.Criteria, "number of criteria")
	c.Flags().IntVarP(&opts.Profiles, "profiles", "p", opts.Profiles, "number of reference profiles")
	c.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 picks one)")
	c.Flags().StringVarP(&output, "output", "o", "", "write the document to file instead of stdout")
	return c
}
