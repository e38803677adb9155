package commands

import (
	"bvvassist-backend/internal/district"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(districtsCmd)
}

var districtsCmd = &cobra.Command{
	Use:   "districts",
	Short: "Lists the districts and the OParl system endpoint of each.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		t := NewTable()
		t.AppendHeader(table.Row{"Slug", "District", "System"})
		for _, d := range district.All {
			t.AppendRow(table.Row{d.Slug, d.Name, d.SystemUrl(application.Config.SystemUrlTemplate)})
		}
		t.Render()
	},
}
