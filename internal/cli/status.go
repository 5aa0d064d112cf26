package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cocosip/go-jpegasm"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List the status codes returned by encode and decode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VALUE\tNAME\tMESSAGE")
			for _, s := range jpegasm.Statuses() {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", int(s), s, s.Template())
			}
			return tw.Flush()
		},
	}
}
