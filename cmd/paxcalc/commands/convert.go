package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stemsi/paxcalc-backend/internal/model"
)

// convert <time> <from> <to>: convert a lap time between two classes.
func convertCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "convert <time> <from> <to>",
		Short: "Convert a lap time from one class to another",
		Example: "  paxcalc convert 1:05.123 GS SS\n" +
			"  paxcalc convert 58.9 STR CAMS --year 2025 --type ProSolo",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := opts.calcSvc.Calculate(cmd.Context(), model.CalculateInput{
				Year:      opts.year,
				IndexType: opts.eventType(),
				Time:      args[0],
				FromClass: args[1],
				ToClass:   args[2],
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(calc)
			}

			pace := "slower"
			if calc.IsFaster {
				pace = "faster"
			}
			fmt.Fprintf(out, "%s %s = %s %s (%s, %s) [%d %s]\n",
				calc.FormattedInput, calc.InputClass.Code,
				calc.FormattedOutput, calc.OutputClass.Code,
				calc.FormattedDifference, pace,
				calc.Year, calc.IndexType)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full calculation as JSON")
	return cmd
}
