package browser

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ScreenshotDebugger stores full page screenshots when a scrape goes wrong.
// A nil debugger does nothing.
type ScreenshotDebugger struct {
	outputDir string
	logger    *slog.Logger
}

func NewScreenshotDebugger(dir string, logger *slog.Logger) *ScreenshotDebugger {
	if dir == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Warn("failed to create screenshot directory", "dir", dir, "error", err)
		return nil
	}
	return &ScreenshotDebugger{outputDir: dir, logger: logger}
}

func (s *ScreenshotDebugger) CaptureAndLog(page playwright.Page, name, message string) error {
	if s == nil || page == nil {
		return nil
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		s.logger.Warn("failed to capture screenshot", "name", name, "error", err)
		return err
	}

	s.logger.Info(message, "screenshot", path)
	return nil
}
