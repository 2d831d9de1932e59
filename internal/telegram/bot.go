package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go-jobtailor/internal/aggregator"
	"go-jobtailor/internal/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// SeenCache is the subset of dedup.JobCache the notifier uses.
type SeenCache interface {
	Unseen(jobs []scraper.Job) []scraper.Job
	Add(urls []string)
}

type Bot struct {
	api    sender
	chatID int64
	logger *slog.Logger
}

func NewBot(token string, chatID int64, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return newBot(api, chatID, logger), nil
}

func newBot(api sender, chatID int64, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{api: api, chatID: chatID, logger: logger}
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// FormatJob renders a listing as a MarkdownV2 message.
func FormatJob(job scraper.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💼 *%s*\n", escapeMarkdown(job.Title))
	fmt.Fprintf(&b, "🏢 %s\n", escapeMarkdown(job.Company))
	fmt.Fprintf(&b, "📍 %s\n", escapeMarkdown(job.Location))
	if job.DatePosted != "" {
		fmt.Fprintf(&b, "📅 %s\n", escapeMarkdown(job.DatePosted))
	}
	if job.SourceQuery != "" {
		fmt.Fprintf(&b, "🔎 %s\n", escapeMarkdown(job.SourceQuery))
	}
	fmt.Fprintf(&b, "🔖 Source: %s", escapeMarkdown(job.Source))
	return b.String()
}

func (b *Bot) SendJob(job scraper.Job) error {
	msg := tgbotapi.NewMessage(b.chatID, FormatJob(job))
	msg.ParseMode = "MarkdownV2"
	if job.URL != scraper.MissingURL {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🔗 View Job", job.URL)),
		)
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}

// NotifyNew sends the listings whose URL the cache has not seen yet and
// records the delivered ones. Placeholder listings are never sent. A failed
// send is logged and the URL stays unseen for the next run.
func (b *Bot) NotifyNew(ctx context.Context, jobs []scraper.Job, cache SeenCache) int {
	candidates := make([]scraper.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.Source != aggregator.FallbackSource {
			candidates = append(candidates, job)
		}
	}

	var delivered []string
	for _, job := range cache.Unseen(candidates) {
		if ctx.Err() != nil {
			break
		}
		if err := b.SendJob(job); err != nil {
			b.logger.Warn("failed to send job", "title", job.Title, "error", err)
			continue
		}
		delivered = append(delivered, job.URL)
	}
	cache.Add(delivered)

	b.logger.Info("telegram notification done", "candidates", len(candidates), "sent", len(delivered))
	return len(delivered)
}
