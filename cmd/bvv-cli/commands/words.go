package commands

import (
	"bvvassist-backend/internal/agenda"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var wordsLimit int

func init() {
	wordsCmd.Flags().IntVar(&wordsLimit, "limit", 100, "The number of words to show.")
	rootCmd.AddCommand(wordsCmd)
}

var wordsCmd = &cobra.Command{
	Use:   "words <district> [--limit <n>]",
	Short: "Shows the most frequent words across the agenda item names.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := loadSnapshot(cmd, args)
		if err != nil {
			return err
		}
		if snapshot.AgendaErr != nil {
			return snapshot.AgendaErr
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Word", "Count"})
		for _, word := range agenda.TopWords(agenda.ItemNames(snapshot.Meetings), wordsLimit) {
			t.AppendRow(table.Row{word.Word, word.Count})
		}
		t.Render()
		return nil
	},
}
