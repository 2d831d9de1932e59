package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go-jobtailor/internal/browser"
	"go-jobtailor/internal/config"
	"go-jobtailor/internal/database"
	"go-jobtailor/internal/dedup"
	"go-jobtailor/internal/scraper"
	"go-jobtailor/internal/search"
	"go-jobtailor/internal/sources"
	"go-jobtailor/internal/telegram"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

func searchAction(log *slog.Logger) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := config.Load(cmd.String("config"))
		if err != nil {
			return err
		}

		location := cmd.String("location")
		if location == "" {
			location = cfg.Search.DefaultLocation
		}
		hours := int(cmd.Int("hours"))
		if hours <= 0 {
			hours = cfg.Search.RecencyHours
		}

		jobs := sources.NewAggregator(cfg, log).Aggregate(ctx, cmd.String("query"), location, hours)
		return render(os.Stdout, jobs, cmd.String("format"))
	}
}

func runSavedAction(log *slog.Logger) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := config.Load(cmd.String("config"))
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required to read saved searches")
		}

		var bot *telegram.Bot
		if cmd.Bool("notify") {
			if err := cfg.RequireTelegram(); err != nil {
				return err
			}
			if bot, err = telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID, log); err != nil {
				return err
			}
		}

		jobs, err := runSaved(ctx, cfg, bot, log)
		if err != nil {
			if bot != nil {
				return reportFailure(bot, log, err)
			}
			return err
		}
		return render(os.Stdout, jobs, cmd.String("format"))
	}
}

// runSaved re-runs every saved search. bot may be nil.
func runSaved(ctx context.Context, cfg *config.Config, bot *telegram.Bot, log *slog.Logger) ([]scraper.Job, error) {
	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	searches, err := repo.ListSavedSearches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}
	if len(searches) == 0 {
		log.Info("no saved searches")
		return nil, nil
	}

	agg := sources.NewAggregator(cfg, log)
	jobs := search.NewRunner(agg, cfg.Search.RecencyHours, log).Run(ctx, searches)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("saved search run interrupted: %w", err)
	}

	if bot != nil {
		cache := dedup.NewJobCache(cfg.CachePath, log)
		sent := bot.NotifyNew(ctx, jobs, cache)
		if err := bot.SendStatus(fmt.Sprintf("Saved searches: %d listings, %d new", len(jobs), sent)); err != nil {
			log.Warn("failed to send summary", "error", err)
		}
	}
	return jobs, nil
}

type errorSender interface {
	SendError(err error) error
}

// reportFailure forwards a failed run to the chat and returns err unchanged.
func reportFailure(bot errorSender, log *slog.Logger, err error) error {
	if sendErr := bot.SendError(err); sendErr != nil {
		log.Warn("failed to report error", "error", sendErr)
	}
	return err
}

func installBrowsers(log *slog.Logger) error {
	log.Info("installing chromium")
	if err := browser.Install(); err != nil {
		return fmt.Errorf("install browsers: %w", err)
	}
	log.Info("chromium installed")
	return nil
}

func render(w io.Writer, jobs []scraper.Job, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jobs)
	case "table", "":
		table := tablewriter.NewWriter(w)
		table.Header("Title", "Company", "Location", "Posted", "Source", "URL")
		for _, j := range jobs {
			if err := table.Append(truncate(j.Title, 50), truncate(j.Company, 30), truncate(j.Location, 30), j.DatePosted, j.Source, j.URL); err != nil {
				return err
			}
		}
		return table.Render()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
