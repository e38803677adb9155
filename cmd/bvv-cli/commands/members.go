package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var membersAll bool

func init() {
	membersCmd.Flags().BoolVar(&membersAll, "all", false, "Include memberships that have ended.")
	rootCmd.AddCommand(membersCmd)
}

var membersCmd = &cobra.Command{
	Use:   "members <district> [--all]",
	Short: "Lists the current members with their roles in every organization.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := loadSnapshot(cmd, args)
		if err != nil {
			return err
		}
		if snapshot.MembersErr != nil {
			return snapshot.MembersErr
		}

		rows := snapshot.Current()
		header := table.Row{"Name", "Form of address", "Role", "Voting right", "Organization"}
		if membersAll {
			rows = snapshot.Members
			header = append(header, "Start", "End", "Classification")
		}

		t := NewTable()
		t.AppendHeader(header)
		for _, row := range rows {
			out := table.Row{
				orDash(row.Name),
				orDash(row.FormOfAddress),
				orDash(row.Role),
				optionalYesNo(row.VotingRight),
				orDash(row.OrganizationName()),
			}
			if membersAll {
				out = append(out, orDash(row.StartDate), orDash(row.EndDate), orDash(row.Classification()))
			}
			t.AppendRow(out)
		}
		t.Render()
		return nil
	},
}
