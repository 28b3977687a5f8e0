package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phenocam-tools/phenofetch/internal/catalog"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List available NEON camera sites",
	Run: func(cmd *cobra.Command, args []string) {
		sites := catalog.All()

		fmt.Printf("\nAvailable PhenoCam sites (%d):\n\n", len(sites))
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SITE\tDOMAIN\tSTATE\tTYPE\tDESCRIPTION")
		for _, site := range sites {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				site.Code, site.Domain, site.State, site.Type, site.Description)
		}
		w.Flush()
	},
}
