package commands

import (
	"log"
	"os"

	"gradescope-api/lib/scrapers/gradescope/view"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rosterCmd)
}

var rosterCmd = &cobra.Command{
	Use:   "roster <course url or id>",
	Short: "Prints the student roster of a course.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		course, err := view.ResolveCourse(args[0], "", "")
		if err != nil {
			log.Fatal(err)
		}

		viewClient, _ := createClients()
		roster, err := viewClient.Roster(cmd.Context(), course)
		if err != nil {
			log.Fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"User Id", "Name"})
		for _, student := range roster {
			t.AppendRow(table.Row{student.UserId, student.FullName})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
