package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func optionalYesNo(b *bool) string {
	if b == nil {
		return "-"
	}
	return yesNo(*b)
}
