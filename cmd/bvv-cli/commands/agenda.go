package commands

import (
	"bvvassist-backend/internal/agenda"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(agendaCmd)
}

var agendaCmd = &cobra.Command{
	Use:   "agenda <district>",
	Short: "Lists the agenda items of every published meeting.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := loadSnapshot(cmd, args)
		if err != nil {
			return err
		}
		if snapshot.AgendaErr != nil {
			return snapshot.AgendaErr
		}
		if !agenda.HasItems(snapshot.Meetings) {
			fmt.Printf("No agenda items found for %s.\n", snapshot.District.Name)
			return nil
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Meeting", "Start", "End", "Number", "Agenda item", "Public"})
		for _, row := range agenda.Flatten(snapshot.Meetings) {
			t.AppendRow(table.Row{
				orDash(row.MeetingName),
				orDash(row.Start),
				orDash(row.End),
				orDash(row.Number),
				orDash(row.Name),
				yesNo(row.Public),
			})
		}
		t.Render()
		return nil
	},
}
