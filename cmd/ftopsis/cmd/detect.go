package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Ftopsis/internal/input"
)

func newDetectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Report the fuzzy variant and mode of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			kind, mode, err := input.DetectVariant(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "kind: %s\nmode: %s\n", kind, mode)
			return nil
		},
	}
}
