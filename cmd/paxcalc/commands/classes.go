package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// classes: list the classes of the selected index.
func classesCmd(opts *options) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List the classes of an index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := opts.paxSvc.GetIndex(cmd.Context(), opts.year, opts.eventType())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "# %d %s (version %s)\n", idx.Year, idx.IndexType, idx.Version)
			fmt.Fprintln(w, "GROUP\tCODE\tNAME\tPAX")
			for _, g := range idx.ClassGroups {
				for _, c := range g.Classes {
					if !c.IsActive && !all {
						continue
					}
					name := c.Name
					if !c.IsActive {
						name += " (inactive)"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\n", g.Name, c.Code, name, c.PaxIndex)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include inactive classes")
	return cmd
}

// indices: list every index the catalog can serve.
func indicesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "indices",
		Short: "List the available indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := opts.paxSvc.ListIndices(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "YEAR\tTYPE\tVERSION\tGROUPS\tCLASSES")
			for _, s := range summaries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n", s.Year, s.IndexType, s.Version, s.GroupCount, s.ClassCount)
			}
			return w.Flush()
		},
	}
}
