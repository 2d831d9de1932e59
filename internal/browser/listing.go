package browser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"
)

// ListingPlan describes how to reach the result cards of a search page.
type ListingPlan struct {
	Name string
	URL  string
	// CardSelectors are tried in order, the first one matching anything wins
	CardSelectors []string
	// WaitSelector is the container awaited before reading cards
	WaitSelector string
	Limit        int

	NavigationTimeout  float64
	NetworkIdleTimeout float64
	SelectorTimeout    float64
	ScrollSteps        int
}

func (p *ListingPlan) defaults() {
	if p.Limit <= 0 {
		p.Limit = 10
	}
	if p.NavigationTimeout <= 0 {
		p.NavigationTimeout = 60000
	}
	if p.NetworkIdleTimeout <= 0 {
		p.NetworkIdleTimeout = 30000
	}
	if p.SelectorTimeout <= 0 {
		p.SelectorTimeout = 10000
	}
}

// OpenListing navigates to the plan URL and returns at most Limit cards.
// Only a failed navigation is an error; slow network or a missing container
// are logged and parsing continues on whatever rendered.
func OpenListing(ctx context.Context, page playwright.Page, plan ListingPlan, logger *slog.Logger, debugger *ScreenshotDebugger) ([]playwright.Locator, error) {
	plan.defaults()
	log := logger.With("source", plan.Name)

	log.Info("navigating", "url", plan.URL)
	if _, err := page.Goto(plan.URL, playwright.PageGotoOptions{
		Timeout: playwright.Float(plan.NavigationTimeout),
	}); err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", plan.URL, err)
	}

	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(plan.NetworkIdleTimeout),
	}); err != nil {
		log.Warn("timeout waiting for networkidle, continuing", "error", err)
	}

	if plan.WaitSelector != "" {
		if _, err := page.WaitForSelector(plan.WaitSelector, playwright.PageWaitForSelectorOptions{
			Timeout: playwright.Float(plan.SelectorTimeout),
		}); err != nil {
			log.Warn("timeout waiting for listing container", "selector", plan.WaitSelector, "error", err)
			debugger.CaptureAndLog(page, plan.Name+"-no-container", "listing container not found")
		}
	}

	if plan.ScrollSteps > 0 {
		if err := HumanScroll(ctx, page, plan.ScrollSteps); err != nil {
			log.Debug("scroll failed", "error", err)
		}
	}

	for _, sel := range plan.CardSelectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cards, err := page.Locator(sel).All()
		if err != nil {
			log.Warn("error finding job cards", "selector", sel, "error", err)
			continue
		}
		if len(cards) == 0 {
			continue
		}
		log.Info("found job cards", "selector", sel, "count", len(cards))
		if len(cards) > plan.Limit {
			cards = cards[:plan.Limit]
		}
		return cards, nil
	}

	log.Warn("no job cards found")
	return nil, nil
}
