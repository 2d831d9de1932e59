package jobboard

import (
	"context"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

const ArbeitnowBaseURL = "https://www.arbeitnow.com"

// Arbeitnow serves a public feed of mostly German postings. The feed has no
// search or recency parameters, so matching on the term happens here.
type Arbeitnow struct {
	baseURL string
	client  *Client
}

func NewArbeitnow(baseURL string, client *Client) *Arbeitnow {
	if baseURL == "" {
		baseURL = ArbeitnowBaseURL
	}
	return &Arbeitnow{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (a *Arbeitnow) Name() string { return "Arbeitnow" }

type arbeitnowResponse struct {
	Data []struct {
		Slug        string   `json:"slug"`
		CompanyName string   `json:"company_name"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Remote      bool     `json:"remote"`
		URL         string   `json:"url"`
		Tags        []string `json:"tags"`
		Location    string   `json:"location"`
		CreatedAt   int64    `json:"created_at"`
	} `json:"data"`
}

func (a *Arbeitnow) Search(ctx context.Context, q Query) ([]Row, error) {
	v := url.Values{}
	v.Set("page", "1")
	var resp arbeitnowResponse
	if err := a.client.getJSON(ctx, a.baseURL+"/api/job-board-api?"+v.Encode(), &resp); err != nil {
		return nil, err
	}

	// a Caser is stateful, one per call
	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(q.Term))
	var rows []Row
	for _, p := range resp.Data {
		if term != "" && !matches(fold, term, p.Title, p.Tags) {
			continue
		}
		date := ""
		if p.CreatedAt > 0 {
			date = time.Unix(p.CreatedAt, 0).UTC().Format(time.RFC3339)
		}
		location := p.Location
		if location == "" && p.Remote {
			location = "Remote"
		}
		rows = append(rows, Row{
			FieldTitle:       p.Title,
			FieldCompany:     p.CompanyName,
			FieldLocation:    location,
			FieldDescription: htmlToText(p.Description),
			FieldURL:         p.URL,
			FieldDatePosted:  date,
		})
		if len(rows) >= q.ResultsWanted && q.ResultsWanted > 0 {
			break
		}
	}
	return rows, nil
}

func matches(fold cases.Caser, term, title string, tags []string) bool {
	if strings.Contains(fold.String(title), term) {
		return true
	}
	for _, tag := range tags {
		if strings.Contains(fold.String(tag), term) {
			return true
		}
	}
	return false
}
