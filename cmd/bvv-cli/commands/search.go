package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <district> <term>",
	Short: "Finds meetings whose agenda items mention term, ex. Verkehr, Kita, Wohnen or Haushalt.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := loadSnapshot(cmd, args)
		if err != nil {
			return err
		}
		if snapshot.AgendaErr != nil {
			return snapshot.AgendaErr
		}

		term := args[1]
		matches := application.Searcher.Search(cmd.Context(), snapshot.Meetings, term)
		if len(matches) == 0 {
			fmt.Printf("No matches for '%s'.\n", term)
			return nil
		}

		fmt.Printf("%d matches for '%s':\n", len(matches), term)
		t := NewTable()
		t.AppendHeader(table.Row{"Meeting", "Start", "End", "Location", "Agenda item", "Public"})
		for _, match := range matches {
			t.AppendRow(table.Row{
				orDash(match.MeetingName),
				orDash(match.Start),
				orDash(match.End),
				match.Location,
				match.AgendaItemName,
				yesNo(match.Public),
			})
		}
		t.Render()
		return nil
	},
}
