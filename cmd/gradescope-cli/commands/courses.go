package commands

import (
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(coursesCmd)
}

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Prints every course on the account's dashboard.",
	Run: func(cmd *cobra.Command, args []string) {
		viewClient, _ := createClients()

		courses, err := viewClient.Courses(cmd.Context())
		if err != nil {
			log.Fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Term", "Name", "Url"})
		for _, course := range courses {
			t.AppendRow(table.Row{course.Id, course.Term, course.Name, course.URL()})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
