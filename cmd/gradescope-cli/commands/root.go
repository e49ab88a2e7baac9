package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"gradescope-api/lib/configutil"
	"gradescope-api/lib/restyutil"
	"gradescope-api/lib/scrapers/gradescope/core"
	"gradescope-api/lib/scrapers/gradescope/extend"
	"gradescope-api/lib/scrapers/gradescope/view"
	"gradescope-api/lib/serviceutil"

	"github.com/spf13/cobra"
)

type Config struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	BaseUrl  string `json:"base_url"`
}

var debugHttp *bool

var rootCmd = &cobra.Command{
	Use:   "gradescope-cli",
	Short: "gradescope-cli inspects courses, rosters and submissions and applies deadline extensions.",
}

func init() {
	debugHttp = rootCmd.PersistentFlags().Bool("debug-http", false, "Dump full HTTP transcripts to .dev/resty/gradescope.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// createClients reads config.json5, logs in and hands back the read and
// extension sides of the session.
func createClients() (view.Client, extend.Client) {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	coreClient, err := core.NewClient(ctx, core.ClientOptions{
		BaseUrl: cfg.BaseUrl,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize core gradescope client", err)
	}
	if *debugHttp {
		restyutil.InstrumentClient(coreClient.Http, restyutil.NewFilesystemOutput(".dev/resty/gradescope"))
	}

	err = coreClient.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		serviceutil.Fatal("failed to log in to gradescope", err)
	}

	return view.NewClient(coreClient), extend.NewClient(coreClient)
}
