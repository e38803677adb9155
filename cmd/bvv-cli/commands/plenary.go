package commands

import (
	"bvvassist-backend/internal/council"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(plenaryCmd)
}

var plenaryCmd = &cobra.Command{
	Use:   "plenary <district>",
	Short: "Lists the current members of the district assembly.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := loadSnapshot(cmd, args)
		if err != nil {
			return err
		}
		if snapshot.MembersErr != nil {
			return snapshot.MembersErr
		}

		names := council.PlenaryMemberNames(snapshot.Current(), application.Classifier)

		t := NewTable()
		t.SetTitle("BVV %s", snapshot.District.Name)
		t.AppendHeader(table.Row{"#", "Name"})
		for i, name := range names {
			t.AppendRow(table.Row{i + 1, name})
		}
		t.Render()
		return nil
	},
}
