package commands

import (
	"log"
	"os"

	"gradescope-api/lib/scrapers/gradescope/view"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var submissionsAll *bool

func init() {
	submissionsAll = submissionsCmd.Flags().Bool("all", false, "Include past submissions, one extra request per student.")
	rootCmd.AddCommand(submissionsCmd)
}

var submissionsCmd = &cobra.Command{
	Use:   "submissions <course id> <assignment id> [--all]",
	Short: "Prints the submissions of an assignment, latest first.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		assignment := view.Assignment{CourseId: args[0], Id: args[1]}
		viewClient, _ := createClients()

		var submissions []view.Submission
		var err error
		if *submissionsAll {
			submissions, err = viewClient.AllSubmissions(cmd.Context(), assignment, view.AnySubmission(), view.AnySubmission())
		} else {
			submissions, err = viewClient.LatestSubmissions(cmd.Context(), assignment, view.AnySubmission())
		}
		if err != nil {
			log.Fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Submission Id", "Student", "User Id", "Url"})
		for _, sub := range submissions {
			t.AppendRow(table.Row{sub.Id, sub.Student.FullName, sub.Student.UserId, sub.URL()})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
