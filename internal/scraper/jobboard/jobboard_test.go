package jobboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go-jobtailor/internal/filter"
	"go-jobtailor/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSite struct {
	name string
	rows []Row
	err  error
}

func (f fakeSite) Name() string { return f.name }

func (f fakeSite) Search(ctx context.Context, q Query) ([]Row, error) {
	return f.rows, f.err
}

func TestScraper_FailingBoardIsIsolated(t *testing.T) {
	s := New([]Site{
		fakeSite{name: "Broken", err: errors.New("403 forbidden")},
		fakeSite{name: "Good", rows: []Row{{FieldTitle: "Go Developer", FieldCompany: "Acme", FieldURL: "https://acme.example/1"}}},
	}, Options{}, discardLogger())

	jobs := s.Fetch(context.Background(), "golang", "Berlin")

	require.Len(t, jobs, 1)
	assert.Equal(t, "Go Developer", jobs[0].Title)
	assert.Equal(t, "Good", jobs[0].Source)
	assert.Equal(t, "Berlin", jobs[0].Location)
}

type panickingSite struct{}

func (panickingSite) Name() string { return "Panicky" }

func (panickingSite) Search(ctx context.Context, q Query) ([]Row, error) {
	panic("nil pointer in row mapper")
}

func TestScraper_PanickingBoardIsIsolated(t *testing.T) {
	s := New([]Site{
		panickingSite{},
		fakeSite{name: "Good", rows: []Row{{FieldTitle: "Platform Engineer", FieldCompany: "Acme"}}},
	}, Options{}, discardLogger())

	var jobs []scraper.Job
	require.NotPanics(t, func() {
		jobs = s.Fetch(context.Background(), "platform", "Berlin")
	})

	require.Len(t, jobs, 1)
	assert.Equal(t, "Platform Engineer", jobs[0].Title)
	assert.Equal(t, "Good", jobs[0].Source)
}

func TestScraper_RegistrationOrderAndTruncation(t *testing.T) {
	var many []Row
	for i := 0; i < 5; i++ {
		many = append(many, Row{FieldTitle: fmt.Sprintf("Second %d", i)})
	}
	s := New([]Site{
		fakeSite{name: "A", rows: []Row{{FieldTitle: "First"}}},
		fakeSite{name: "B", rows: many},
	}, Options{ResultsWanted: 3}, discardLogger())

	jobs := s.Fetch(context.Background(), "q", "Germany")

	require.Len(t, jobs, 4)
	assert.Equal(t, "First", jobs[0].Title)
	assert.Equal(t, "Second 0", jobs[1].Title)
	assert.Equal(t, "Second 2", jobs[3].Title)
}

func TestScraper_NaNLikeValuesBecomeDefaults(t *testing.T) {
	s := New([]Site{fakeSite{name: "Board", rows: []Row{
		{FieldTitle: "nan", FieldCompany: "Acme"},
		{FieldTitle: " Data Engineer ", FieldCompany: "NaN", FieldLocation: "None", FieldDescription: "<NA>", FieldURL: "null", FieldDatePosted: "  "},
	}}}, Options{}, discardLogger())

	jobs := s.Fetch(context.Background(), "data", "Munich")

	require.Len(t, jobs, 1)
	job := jobs[0]
	assert.Equal(t, "Data Engineer", job.Title)
	assert.Equal(t, "Unknown Company", job.Company)
	assert.Equal(t, "Munich", job.Location)
	assert.Equal(t, "#", job.URL)
	assert.Equal(t, "View full details at #", job.Description)
	assert.Empty(t, job.DatePosted)
}

func TestRowClean(t *testing.T) {
	r := Row{"a": "null", "b": " <NA> ", "c": " keep ", "d": "NaT"}.Clean()
	assert.Equal(t, Row{"a": "", "b": "", "c": "keep", "d": ""}, r)
}

const linkedInFragment = `
<li>
  <div class="base-card base-search-card job-search-card">
    <a class="base-card__full-link" href="https://de.linkedin.com/jobs/view/go-developer-123?refId=abc&trackingId=xyz">
      <span class="sr-only">Go Developer</span>
    </a>
    <div class="base-search-card__info">
      <h3 class="base-search-card__title">
        Go Developer
      </h3>
      <h4 class="base-search-card__subtitle"><a href="#">Acme GmbH</a></h4>
      <div class="base-search-card__metadata">
        <span class="job-search-card__location">Berlin, Berlin, Germany</span>
        <time class="job-search-card__listdate" datetime="2024-03-09">1 day ago</time>
      </div>
    </div>
  </div>
</li>
<li>
  <div class="base-card base-search-card job-search-card">
    <a class="base-card__full-link" href="https://de.linkedin.com/jobs/view/sre-456"></a>
    <h3 class="base-search-card__title">SRE</h3>
    <h4 class="base-search-card__subtitle">Beta AG</h4>
    <span class="job-search-card__location">Hamburg</span>
  </div>
</li>`

type requestLog struct {
	mu   sync.Mutex
	reqs []*http.Request
}

func (l *requestLog) add(r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, r)
}

func (l *requestLog) first() *http.Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reqs[0]
}

func newBoardServer(t *testing.T) (*httptest.Server, *requestLog) {
	seen := &requestLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs-guest/jobs/api/seeMoreJobPostings/search", func(w http.ResponseWriter, r *http.Request) {
		seen.add(r)
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, linkedInFragment)
	})
	mux.HandleFunc("/api/job-board-api", func(w http.ResponseWriter, r *http.Request) {
		seen.add(r)
		w.Header().Set("Content-Type", "application/json")
		created := time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC).Unix()
		fmt.Fprintf(w, `{"data":[
			{"company_name":"Acme","title":"Senior Golang Engineer","description":"<p>Build <b>things</b></p>","url":"https://arbeitnow.example/1","tags":["Backend"],"location":"Berlin","created_at":%d},
			{"company_name":"Other","title":"Marketing Lead","url":"https://arbeitnow.example/2","tags":["Sales"],"location":"Köln","created_at":%d},
			{"company_name":"Remote Co","title":"Platform Engineer","url":"https://arbeitnow.example/3","tags":["GOLANG"],"remote":true,"created_at":0}
		]}`, created, created)
	})
	mux.HandleFunc("/api/remote-jobs", func(w http.ResponseWriter, r *http.Request) {
		seen.add(r)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"jobs":[{"url":"https://remotive.example/9","title":"Go Backend Dev","company_name":"Distributed","publication_date":"2024-03-07T14:02:11","candidate_required_location":"Europe","description":"Hello"}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestLinkedIn_Search(t *testing.T) {
	srv, seen := newBoardServer(t)
	site := NewLinkedIn(srv.URL, NewClient(5*time.Second, nil))

	rows, err := site.Search(context.Background(), Query{Term: "golang", Country: "Germany", HoursOld: 72})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme GmbH", rows[0].Clean()[FieldCompany])
	assert.Equal(t, "Go Developer", rows[0].Clean()[FieldTitle])
	assert.Equal(t, "https://de.linkedin.com/jobs/view/go-developer-123", rows[0][FieldURL])
	assert.Equal(t, "2024-03-09", rows[0][FieldDatePosted])
	assert.Equal(t, "", rows[1][FieldDatePosted])

	q := seen.first().URL.Query()
	assert.Equal(t, "golang", q.Get("keywords"))
	assert.Equal(t, "Germany", q.Get("location"))
	assert.Equal(t, "r259200", q.Get("f_TPR"))
}

func TestArbeitnow_Search(t *testing.T) {
	srv, _ := newBoardServer(t)
	site := NewArbeitnow(srv.URL, NewClient(5*time.Second, nil))

	rows, err := site.Search(context.Background(), Query{Term: "golang", ResultsWanted: 10})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Senior Golang Engineer", rows[0][FieldTitle])
	assert.Equal(t, "2024-03-08T10:00:00Z", rows[0][FieldDatePosted])
	assert.Equal(t, "Build things", rows[0][FieldDescription])
	assert.Equal(t, "Platform Engineer", rows[1][FieldTitle])
	assert.Equal(t, "Remote", rows[1][FieldLocation])
	assert.Equal(t, "", rows[1][FieldDatePosted])
}

func TestArbeitnow_TimestampSurvivesRecencyFilter(t *testing.T) {
	now := time.Now().UTC()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":[
			{"company_name":"Acme","title":"Go Engineer","url":"https://arbeitnow.example/70h","created_at":%d},
			{"company_name":"Acme","title":"Go Engineer II","url":"https://arbeitnow.example/74h","created_at":%d}
		]}`, now.Add(-70*time.Hour).Unix(), now.Add(-74*time.Hour).Unix())
	}))
	t.Cleanup(srv.Close)
	site := NewArbeitnow(srv.URL, NewClient(5*time.Second, nil))

	rows, err := site.Search(context.Background(), Query{Term: "go", ResultsWanted: 10})
	require.NoError(t, err)

	kept := filter.FilterRecent(toJobs(rows, site.Name(), "Berlin"), 72, now)
	require.Len(t, kept, 1)
	assert.Equal(t, "Go Engineer", kept[0].Title)
}

func TestRemotive_Search(t *testing.T) {
	srv, seen := newBoardServer(t)
	site := NewRemotive(srv.URL, NewClient(5*time.Second, NewHostLimiter(100, 10)))

	rows, err := site.Search(context.Background(), Query{Term: "go", ResultsWanted: 5})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03-07T14:02:11", rows[0][FieldDatePosted])
	assert.Equal(t, "Europe", rows[0][FieldLocation])
	assert.Equal(t, "5", seen.first().URL.Query().Get("limit"))
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewRemotive(srv.URL, NewClient(time.Second, nil)).Search(context.Background(), Query{Term: "go"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestScraper_EndToEndAgainstLocalBoards(t *testing.T) {
	srv, _ := newBoardServer(t)
	client := NewClient(5*time.Second, NewHostLimiter(100, 10))
	s := New([]Site{
		NewLinkedIn(srv.URL, client),
		NewArbeitnow(srv.URL, client),
		NewRemotive(srv.URL, client),
	}, Options{ResultsWanted: 10}, discardLogger())

	jobs := s.Fetch(context.Background(), "golang", "")

	require.Len(t, jobs, 5)
	assert.Equal(t, "LinkedIn", jobs[0].Source)
	assert.Equal(t, "Berlin, Berlin, Germany", jobs[0].Location)
	assert.Equal(t, "Arbeitnow", jobs[2].Source)
	assert.Equal(t, "Remotive", jobs[4].Source)
	for _, j := range jobs {
		assert.NotEmpty(t, j.Title)
		assert.NotEmpty(t, j.Company)
		assert.NotEmpty(t, j.URL)
		assert.NotEmpty(t, j.Description)
		assert.NotEmpty(t, j.Location)
	}
}
