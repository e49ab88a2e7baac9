package commands

import (
	"errors"
	"log"
	"log/slog"

	"gradescope-api/lib/scrapers/gradescope/extend"
	"gradescope-api/lib/scrapers/gradescope/view"
	"gradescope-api/lib/textutil"

	"github.com/spf13/cobra"
)

var (
	extendEmail *string
	extendDays  *int
	extendHours *int
)

func init() {
	extendEmail = extendCmd.Flags().String("email", "", "The student's email as enrolled in the course.")
	extendDays = extendCmd.Flags().Int("days", 0, "Days to extend the deadlines by.")
	extendHours = extendCmd.Flags().Int("hours", 0, "Hours to extend the deadlines by.")
	extendCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(extendCmd)
}

var extendCmd = &cobra.Command{
	Use:   "extend <course id> <assignment id> --email <student> [--days n] [--hours n]",
	Short: "Extends an assignment's deadlines for one student.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		assignment := view.Assignment{CourseId: args[0], Id: args[1]}
		_, extendClient := createClients()
		ctx := cmd.Context()

		err := extendClient.Apply(ctx, assignment, *extendEmail, *extendDays, *extendHours)
		if err == nil {
			slog.Info("extension applied",
				"email", *extendEmail,
				"days", *extendDays,
				"hours", *extendHours)
			return
		}
		if !errors.Is(err, extend.ErrStudentNotFound) {
			log.Fatal(err)
		}

		// a typo'd email is by far the most common failure here, so look
		// up the closest enrolled address before giving up
		emails, rosterErr := extendClient.Roster(ctx, assignment)
		if rosterErr != nil {
			log.Fatal(err)
		}
		candidates := make([]string, 0, len(emails))
		for email := range emails {
			candidates = append(candidates, email)
		}
		closest, similarity := textutil.ClosestName(*extendEmail, candidates)
		if similarity > 0.8 {
			slog.Error("student not found", "email", *extendEmail, "did_you_mean", closest)
		}
		log.Fatal(err)
	},
}
