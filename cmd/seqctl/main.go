package main

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskboard/internal/client"
	"taskboard/internal/config"
	"taskboard/internal/logger"
)

type app struct {
	cfg      *config.ClientConfig
	log      *zap.Logger
	logLevel string
}

func (a *app) client() *client.Client {
	return client.New(a.cfg.BaseURL,
		client.WithHTTPClient(&http.Client{Timeout: a.cfg.Timeout}),
		client.WithToken(a.cfg.Token),
		client.WithLogger(a.log),
	)
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.LoadClient()}

	root := &cobra.Command{
		Use:           "seqctl",
		Short:         "Reorder taskboard tasks from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.log = logger.New(logger.Config{Level: a.logLevel, Encoding: "console", Output: cmd.ErrOrStderr()})
		},
	}

	root.PersistentFlags().StringVar(&a.cfg.BaseURL, "url", a.cfg.BaseURL, "taskboard base URL (TASKBOARD_URL)")
	root.PersistentFlags().StringVar(&a.cfg.Token, "token", a.cfg.Token, "bearer token (TASKBOARD_TOKEN)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level")

	root.AddCommand(newLoginCmd(a), newListCmd(a), newMoveCmd(a))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Stderr.WriteString("seqctl: " + err.Error() + "\n")
		os.Exit(1)
	}
}
