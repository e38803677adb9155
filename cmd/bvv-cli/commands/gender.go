package commands

import (
	"bvvassist-backend/internal/council"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(genderCmd)
}

var genderCmd = &cobra.Command{
	Use:   "gender <district>",
	Short: "Shows the gender distribution of the assembly over the years and the average roles per person.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := loadSnapshot(cmd, args)
		if err != nil {
			return err
		}
		if snapshot.MembersErr != nil {
			return snapshot.MembersErr
		}

		history, err := application.GenderHistory(snapshot)
		if err != nil {
			return err
		}
		t := NewTable()
		t.AppendHeader(table.Row{"Year", "Women %", "Men %", "Women", "Men"})
		for _, year := range history {
			t.AppendRow(table.Row{
				year.Year,
				fmt.Sprintf("%.1f", year.FemalePercent),
				fmt.Sprintf("%.1f", year.MalePercent),
				year.Female,
				year.Male,
			})
		}
		t.Render()

		averages, err := council.AverageRolesByGender(snapshot.Current())
		if err != nil {
			return err
		}
		roles := NewTable()
		roles.SetTitle("Average roles per person")
		roles.AppendHeader(table.Row{"Gender", "Persons", "Roles"})
		roles.AppendRow(table.Row{"Women", averages.FemalePersons, fmt.Sprintf("%.2f", averages.Female)})
		roles.AppendRow(table.Row{"Men", averages.MalePersons, fmt.Sprintf("%.2f", averages.Male)})
		roles.Render()
		return nil
	},
}
