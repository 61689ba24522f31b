package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stemsi/paxcalc-backend/internal/pax"
)

// format <seconds>: render a number of seconds as a lap time.
func formatCmd() *cobra.Command {
	var diff bool

	cmd := &cobra.Command{
		Use:   "format <seconds>",
		Short: "Render seconds with millisecond precision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid number %q", args[0])
			}

			if diff {
				fmt.Fprintln(cmd.OutOrStdout(), pax.FormatDifference(v))
				return nil
			}
			s, err := pax.FormatTime(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&diff, "diff", "d", false, "format as a signed difference")
	return cmd
}
