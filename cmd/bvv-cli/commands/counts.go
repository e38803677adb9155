package commands

import (
	"bvvassist-backend/internal/council"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(countsCmd)
}

var countsCmd = &cobra.Command{
	Use:   "counts <district>",
	Short: "Shows the current number of members per committee and faction.",
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
		t.AppendHeader(table.Row{"Organization", "Members", "Faction"})
		for _, count := range council.CountCurrentMembers(snapshot.Current()) {
			t.AppendRow(table.Row{count.Organization, count.Members, yesNo(count.IsFaction)})
		}
		t.Render()
		return nil
	},
}
