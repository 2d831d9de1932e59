package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go-jobtailor/internal/database"
	"go-jobtailor/internal/models"
	"go-jobtailor/internal/scraper"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type searchCall struct {
	query, location string
	hours           int
}

type fakeSearcher struct {
	mu    sync.Mutex
	calls []searchCall
	delay time.Duration
}

func (f *fakeSearcher) Aggregate(ctx context.Context, query, location string, hours int) []scraper.Job {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{query, location, hours})
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return []scraper.Job{{Title: "Senior " + query + " (Mock/Fallback)", Source: "Mock"}}
		}
	}
	return []scraper.Job{{Title: "Go Developer", Company: "Acme", Location: location, URL: "#", Description: "d", Source: "LinkedIn"}}
}

type fakeRunner struct {
	got []models.SavedSearch
}

func (f *fakeRunner) Run(ctx context.Context, searches []models.SavedSearch) []scraper.Job {
	f.got = searches
	out := []scraper.Job{}
	for _, s := range searches {
		out = append(out, scraper.Job{Title: "Job for " + s.Query, SourceQuery: s.Query})
	}
	return out
}

type memStore struct {
	mu       sync.Mutex
	jobs     []models.TrackedJob
	searches []models.SavedSearch
	nextID   int
}

func (m *memStore) TrackJob(ctx context.Context, job *models.TrackedJob) (*models.TrackedJob, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := job.Normalize(time.Now()); err != nil {
		return nil, false, err
	}
	for i := range m.jobs {
		if m.jobs[i].ID == job.ID {
			existing := m.jobs[i]
			return &existing, false, nil
		}
	}
	m.jobs = append(m.jobs, *job)
	return job, true, nil
}

func (m *memStore) ListTrackedJobs(ctx context.Context) ([]models.TrackedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.TrackedJob{}, m.jobs...), nil
}

func (m *memStore) UpdateJobStatus(ctx context.Context, id string, status models.JobStatus) (*models.TrackedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.jobs {
		if m.jobs[i].ID == id {
			m.jobs[i].Status = status
			updated := m.jobs[i]
			return &updated, nil
		}
	}
	return nil, fmt.Errorf("tracked job %q: %w", id, database.ErrNotFound)
}

func (m *memStore) DeleteTrackedJob(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.jobs[:0]
	for _, j := range m.jobs {
		if j.ID != id {
			kept = append(kept, j)
		}
	}
	m.jobs = kept
	return nil
}

func (m *memStore) SaveSearch(ctx context.Context, s *models.SavedSearch) (*models.SavedSearch, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.searches {
		if m.searches[i].MatchKey() == s.MatchKey() {
			existing := m.searches[i]
			return &existing, false, nil
		}
	}
	if s.ID == "" {
		m.nextID++
		s.ID = fmt.Sprintf("s%d", m.nextID)
	}
	m.searches = append(m.searches, *s)
	return s, true, nil
}

func (m *memStore) ListSavedSearches(ctx context.Context) ([]models.SavedSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SavedSearch{}, m.searches...), nil
}

func (m *memStore) DeleteSavedSearch(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.searches[:0]
	for _, s := range m.searches {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	m.searches = kept
	return nil
}

type testAPI struct {
	router   *gin.Engine
	searcher *fakeSearcher
	runner   *fakeRunner
	store    *memStore
}

func newTestAPI(timeout time.Duration) *testAPI {
	api := &testAPI{searcher: &fakeSearcher{}, runner: &fakeRunner{}, store: &memStore{}}
	api.router = NewRouter(Deps{
		Searcher:        api.searcher,
		Runner:          api.runner,
		Store:           api.store,
		DefaultLocation: "Germany",
		RecencyHours:    72,
		RequestTimeout:  timeout,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return api
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := newTestAPI(time.Second).do(http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSearchJobs(t *testing.T) {
	api := newTestAPI(time.Second)

	w := api.do(http.MethodGet, "/search-jobs/?query=golang&hours=24", "")

	require.Equal(t, http.StatusOK, w.Code)
	var jobs []scraper.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "Germany", jobs[0].Location)
	assert.Equal(t, []searchCall{{"golang", "Germany", 24}}, api.searcher.calls)
}

func TestSearchJobs_BadInput(t *testing.T) {
	api := newTestAPI(time.Second)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/search-jobs/", "").Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/search-jobs/?query=go&hours=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/search-jobs/?query=go&hours=0", "").Code)
	assert.Empty(t, api.searcher.calls)
}

func TestSearchJobs_DeadlineIs504(t *testing.T) {
	api := newTestAPI(20 * time.Millisecond)
	api.searcher.delay = time.Second

	w := api.do(http.MethodGet, "/search-jobs/?query=golang&location=Berlin", "")

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, "timeout", apiErr.Error.Code)
	assert.NotEmpty(t, apiErr.Error.RequestID)
}

func TestTrackedJobsLifecycle(t *testing.T) {
	api := newTestAPI(time.Second)

	w := api.do(http.MethodPost, "/tracked-jobs/", `{"title":"Go Developer","company":"Acme","location":"Berlin","description":"d","url":"https://acme.example/1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"Go DeveloperAcme"`)
	assert.Contains(t, w.Body.String(), `"status":"Saved"`)

	w = api.do(http.MethodPost, "/tracked-jobs/", `{"title":"Go Developer","company":"Acme"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Job already tracked")

	w = api.do(http.MethodPatch, "/tracked-jobs/Go%20DeveloperAcme/status?status=Applied", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Applied"`)

	w = api.do(http.MethodPatch, "/tracked-jobs/Go%20DeveloperAcme/status", `{"status":"interview"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Interview"`)

	w = api.do(http.MethodGet, "/tracked-jobs/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var jobs []models.TrackedJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)

	w = api.do(http.MethodDelete, "/tracked-jobs/Go%20DeveloperAcme", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, api.store.jobs)
}

func TestTrackedJobs_Errors(t *testing.T) {
	api := newTestAPI(time.Second)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/tracked-jobs/", `{"company":"Acme"}`).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/tracked-jobs/", `{"title":"x","status":"Ghosted"}`).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPatch, "/tracked-jobs/x/status?status=Ghosted", "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPatch, "/tracked-jobs/missing/status?status=Offer", "").Code)
}

func TestSavedSearches(t *testing.T) {
	api := newTestAPI(time.Second)

	w := api.do(http.MethodPost, "/saved-searches/", `{"query":"Golang","location":"Köln"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodPost, "/saved-searches/", `{"query":"golang","location":"koln"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Search already saved")

	w = api.do(http.MethodPost, "/saved-searches/", `{"id":"devops","query":"DevOps","location":"Berlin"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodPost, "/run-automated-search/", "")
	require.Equal(t, http.StatusOK, w.Code)
	var jobs []scraper.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jobs))
	require.Len(t, jobs, 2)
	assert.Equal(t, "Golang", jobs[0].SourceQuery)
	assert.Equal(t, "DevOps", jobs[1].SourceQuery)

	w = api.do(http.MethodDelete, "/saved-searches/devops", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/saved-searches/", "")
	var searches []models.SavedSearch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &searches))
	require.Len(t, searches, 1)
	assert.Equal(t, "Golang", searches[0].Query)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/saved-searches/", `{"location":"Berlin"}`).Code)
}

func TestNoStoreConfigured(t *testing.T) {
	r := NewRouter(Deps{Searcher: &fakeSearcher{}, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	req := httptest.NewRequest(http.MethodGet, "/tracked-jobs/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/search-jobs/?query=go", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
