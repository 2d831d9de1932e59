package jobboard

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const LinkedInBaseURL = "https://www.linkedin.com"

// LinkedIn reads the public guest search fragment, no login needed.
type LinkedIn struct {
	baseURL string
	client  *Client
}

func NewLinkedIn(baseURL string, client *Client) *LinkedIn {
	if baseURL == "" {
		baseURL = LinkedInBaseURL
	}
	return &LinkedIn{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (l *LinkedIn) Name() string { return "LinkedIn" }

func (l *LinkedIn) searchURL(q Query) string {
	location := q.Location
	if location == "" {
		location = q.Country
	}
	v := url.Values{}
	v.Set("keywords", q.Term)
	v.Set("location", location)
	if q.HoursOld > 0 {
		v.Set("f_TPR", "r"+strconv.Itoa(q.HoursOld*3600))
	}
	v.Set("start", "0")
	return l.baseURL + "/jobs-guest/jobs/api/seeMoreJobPostings/search?" + v.Encode()
}

func (l *LinkedIn) Search(ctx context.Context, q Query) ([]Row, error) {
	body, err := l.client.get(ctx, l.searchURL(q), "text/html")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("linkedin parse: %w", err)
	}
	return parseLinkedInCards(doc), nil
}

func parseLinkedInCards(doc *goquery.Document) []Row {
	var rows []Row
	doc.Find("div.base-search-card, div.job-search-card").Each(func(_ int, card *goquery.Selection) {
		href, _ := card.Find("a.base-card__full-link").First().Attr("href")
		date, ok := card.Find("time").First().Attr("datetime")
		if !ok {
			date = card.Find("time").First().Text()
		}
		rows = append(rows, Row{
			FieldTitle:      card.Find(".base-search-card__title").First().Text(),
			FieldCompany:    card.Find(".base-search-card__subtitle").First().Text(),
			FieldLocation:   card.Find(".job-search-card__location").First().Text(),
			FieldURL:        canonicalURL(href),
			FieldDatePosted: date,
		})
	})
	return rows
}

// canonicalURL drops tracking parameters so the same posting keeps one URL.
func canonicalURL(href string) string {
	href = strings.TrimSpace(href)
	if i := strings.Index(href, "?"); i >= 0 {
		href = href[:i]
	}
	return href
}
