package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-jobtailor/internal/config"
	"go-jobtailor/internal/logger"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New("jobtailor")

	configFlag := &cli.StringFlag{
		Name:  "config",
		Usage: "path to the YAML config",
		Value: config.DefaultPath,
	}

	app := &cli.Command{
		Name:  "jobtailor",
		Usage: "search job boards and follow saved searches",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "run one search across every configured source",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "search term",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "location",
						Usage: "location (defaults to search.default_location)",
					},
					&cli.IntFlag{
						Name:  "hours",
						Usage: "recency window in hours (defaults to search.recency_hours)",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "table or json",
						Value: "table",
					},
				},
				Action: searchAction(log),
			},
			{
				Name:  "run-saved",
				Usage: "re-run every saved search from the database",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:  "notify",
						Usage: "send listings not seen before to Telegram",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "table or json",
						Value: "table",
					},
				},
				Action: runSavedAction(log),
			},
			{
				Name:  "install-browsers",
				Usage: "download the chromium build used by the browser sources",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return installBrowsers(log)
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}
