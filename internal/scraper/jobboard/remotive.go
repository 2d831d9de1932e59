package jobboard

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

const RemotiveBaseURL = "https://remotive.com"

type Remotive struct {
	baseURL string
	client  *Client
}

func NewRemotive(baseURL string, client *Client) *Remotive {
	if baseURL == "" {
		baseURL = RemotiveBaseURL
	}
	return &Remotive{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (r *Remotive) Name() string { return "Remotive" }

type remotiveResponse struct {
	Jobs []struct {
		URL                       string `json:"url"`
		Title                     string `json:"title"`
		CompanyName               string `json:"company_name"`
		PublicationDate           string `json:"publication_date"`
		CandidateRequiredLocation string `json:"candidate_required_location"`
		Description               string `json:"description"`
	} `json:"jobs"`
}

func (r *Remotive) Search(ctx context.Context, q Query) ([]Row, error) {
	v := url.Values{}
	v.Set("search", q.Term)
	if q.ResultsWanted > 0 {
		v.Set("limit", strconv.Itoa(q.ResultsWanted))
	}
	var resp remotiveResponse
	if err := r.client.getJSON(ctx, r.baseURL+"/api/remote-jobs?"+v.Encode(), &resp); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		rows = append(rows, Row{
			FieldTitle:       j.Title,
			FieldCompany:     j.CompanyName,
			FieldLocation:    j.CandidateRequiredLocation,
			FieldDescription: htmlToText(j.Description),
			FieldURL:         j.URL,
			FieldDatePosted:  j.PublicationDate, // kept whole, the recency filter needs the hour
		})
	}
	return rows, nil
}
