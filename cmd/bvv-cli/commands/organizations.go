package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(organizationsCmd)
}

var organizationsCmd = &cobra.Command{
	Use:   "organizations <district>",
	Short: "Lists the committees and factions that have members.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := loadSnapshot(cmd, args)
		if err != nil {
			return err
		}
		if snapshot.MembersErr != nil {
			return snapshot.MembersErr
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Name", "Short name", "Type", "Classification"})
		for _, org := range snapshot.Organizations {
			t.AppendRow(table.Row{
				orDash(org.Name),
				orDash(org.ShortName),
				orDash(org.OrganizationType),
				orDash(org.Classification),
			})
		}
		t.Render()
		return nil
	},
}
