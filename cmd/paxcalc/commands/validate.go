package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stemsi/paxcalc-backend/internal/dataset"
)

var errInvalidIndex = errors.New("index is invalid")

// validate <file>: check an index file before importing it.
func validateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check an index JSON file for errors and warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := dataset.LoadFile(args[0])
			if err != nil {
				return err
			}

			res := opts.paxSvc.ValidateIndex(idx)
			out := cmd.OutOrStdout()
			for _, e := range res.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			fmt.Fprintf(out, "%d classes in %d groups\n", res.ClassCount, res.GroupCount)

			if !res.IsValid {
				return fmt.Errorf("%s: %w", args[0], errInvalidIndex)
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}
