package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/menofiaacademy/academy-site/internal/catalog"
	"github.com/menofiaacademy/academy-site/internal/logger"
	"github.com/menofiaacademy/academy-site/internal/registration"
	"github.com/menofiaacademy/academy-site/internal/site"
)

const csrfField = "gorilla.csrf.Token"

type fakeSource struct {
	texts map[string]string
}

func (f *fakeSource) FetchWithFallback(primary, backup string) (string, error) {
	if text, ok := f.texts[primary]; ok {
		return text, nil
	}
	return "", fmt.Errorf("no text for %s", primary)
}

type fakeSubmitter struct {
	mu   sync.Mutex
	got  []registration.Data
	err  error
	hits int
}

func (f *fakeSubmitter) Submit(data registration.Data) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits++
	f.got = append(f.got, data)
	return f.err
}

type fakeNotifier struct {
	mu  sync.Mutex
	got []registration.Data
	err error
}

func (f *fakeNotifier) Notify(_ context.Context, data registration.Data) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, data)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

var testSources = catalog.Sources{
	Courses:        catalog.Pair{Primary: "courses", Backup: "courses.csv"},
	Team:           catalog.Pair{Primary: "team", Backup: "team.csv"},
	Accreditations: catalog.Pair{Primary: "accreditations", Backup: "accreditations.csv"},
}

func allListings() *fakeSource {
	return &fakeSource{texts: map[string]string{
		"courses":        "CourseName,Price (EGP)\nPython,500\nExcel,0\n",
		"team":           "Name,job\nSara,Teacher\nAhmed,متطوع\n",
		"accreditations": "ImageURL\nhttps://img.example/a.png\n",
	}}
}

type harness struct {
	server    *Server
	ts        *httptest.Server
	client    *http.Client
	submitter *fakeSubmitter
	notifier  *fakeNotifier
}

func newHarness(t *testing.T, src catalog.TextSource) *harness {
	t.Helper()

	original := logger.Default()
	logger.SetDefault(logger.New(logger.LevelDebug, io.Discard))
	t.Cleanup(func() { logger.SetDefault(original) })

	renderer, err := site.New(site.Options{})
	if err != nil {
		t.Fatalf("site.New() error = %v", err)
	}

	h := &harness{submitter: &fakeSubmitter{}, notifier: &fakeNotifier{}}
	h.server, err = New(Config{
		Source:    src,
		Sources:   testSources,
		Renderer:  renderer,
		Submitter: h.submitter,
		Notifier:  h.notifier,
		CSRFKey:   []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	h.ts = httptest.NewServer(h.server.Handler())
	t.Cleanup(h.ts.Close)

	jar, _ := cookiejar.New(nil)
	h.client = &http.Client{Jar: jar}
	return h
}

func (h *harness) get(t *testing.T, path string) (*http.Response, *goquery.Document) {
	t.Helper()
	resp, err := h.client.Get(h.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse %s error = %v", path, err)
	}
	return resp, doc
}

// submit loads the registration form for course and posts values with its token.
func (h *harness) submit(t *testing.T, course string, values url.Values) (*http.Response, *goquery.Document) {
	t.Helper()
	_, form := h.get(t, "/register?course="+url.QueryEscape(course))

	token, ok := form.Find(`input[name="` + csrfField + `"]`).Attr("value")
	if !ok {
		t.Fatal("form has no CSRF token")
	}
	values.Set(csrfField, token)
	if values.Get(registration.FieldCourseTitle) == "" {
		values.Set(registration.FieldCourseTitle, course)
	}

	resp, err := h.client.PostForm(h.ts.URL+"/register", values)
	if err != nil {
		t.Fatalf("POST /register error = %v", err)
	}
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, doc
}

func validForm() url.Values {
	return url.Values{
		registration.FieldName:  {"Ahmed Ali"},
		registration.FieldPhone: {"01012345678"},
		registration.FieldEmail: {"ahmed@example.com"},
	}
}

func TestListingPages(t *testing.T) {
	h := newHarness(t, allListings())

	tests := []struct {
		path string
		want site.Summary
	}{
		{"/", site.Summary{Accreditations: 1}},
		{"/courses", site.Summary{Courses: 2}},
		{"/team", site.Summary{Team: 1, Volunteers: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := h.client.Get(h.ts.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q", ct)
			}
			if resp.Header.Get("X-Frame-Options") != "DENY" {
				t.Error("security headers missing")
			}
			got, err := site.Inspect(resp.Body)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Inspect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestListingPages_Degraded(t *testing.T) {
	src := allListings()
	delete(src.texts, "team")
	h := newHarness(t, src)

	resp, doc := h.get(t, "/courses")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if doc.Find("p.notice").Text() != catalog.DegradedNotice {
		t.Error("degraded notice missing")
	}
	if doc.Find("article.course-card").Length() != 2 {
		t.Error("courses not rendered alongside the notice")
	}
}

func TestUnknownPath(t *testing.T) {
	h := newHarness(t, allListings())
	resp, _ := h.get(t, "/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRegisterForm(t *testing.T) {
	h := newHarness(t, allListings())

	resp, doc := h.get(t, "/register?course=Python")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if doc.Find("form.registration-form").Length() != 1 {
		t.Fatal("form missing")
	}
	if v, _ := doc.Find(`input[name="courseTitle"]`).Attr("value"); v != "Python" {
		t.Errorf("courseTitle = %q", v)
	}

	resp, doc = h.get(t, "/register?course=Cobol")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown course status = %d, want 404", resp.StatusCode)
	}
	if doc.Find("p.form-error").Text() != site.MessageCourseNotFound {
		t.Errorf("unknown course message = %q", doc.Find("p.form-error").Text())
	}
}

func TestRegisterSubmit_Success(t *testing.T) {
	h := newHarness(t, allListings())

	form := validForm()
	form.Set(registration.FieldDiscountCode, " EID ")
	resp, doc := h.submit(t, "Python", form)
	h.server.Wait()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if doc.Find("p.success").Length() != 1 {
		t.Error("success message missing")
	}
	if h.submitter.hits != 1 {
		t.Fatalf("submissions = %d, want 1", h.submitter.hits)
	}
	want := registration.Data{
		CourseTitle:  "Python",
		Name:         "Ahmed Ali",
		Phone:        "01012345678",
		Email:        "ahmed@example.com",
		DiscountCode: "EID",
	}
	if h.submitter.got[0] != want {
		t.Errorf("submitted %+v, want %+v", h.submitter.got[0], want)
	}
	if h.notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", h.notifier.count())
	}
}

func TestRegisterSubmit_Invalid(t *testing.T) {
	h := newHarness(t, allListings())

	form := validForm()
	form.Set(registration.FieldEmail, "not-an-email")
	resp, doc := h.submit(t, "Python", form)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if doc.Find("p.form-error").Text() != site.MessageInvalid {
		t.Errorf("error = %q", doc.Find("p.form-error").Text())
	}
	if v, _ := doc.Find(`input[name="name"]`).Attr("value"); v != "Ahmed Ali" {
		t.Errorf("name not retained: %q", v)
	}
	if h.submitter.hits != 0 {
		t.Errorf("invalid form was submitted upstream")
	}
}

func TestRegisterSubmit_UpstreamFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "transport failure",
			err:        &registration.SubmissionError{Endpoint: "https://script.example", Err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
			wantMsg:    site.MessageSubmitFailed,
		},
		{
			name:       "unexpected failure",
			err:        errors.New("encoding failed"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    site.MessageUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, allListings())
			h.submitter.err = tt.err

			resp, doc := h.submit(t, "Python", validForm())
			h.server.Wait()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if got := doc.Find("p.form-error").Text(); got != tt.wantMsg {
				t.Errorf("error = %q, want %q", got, tt.wantMsg)
			}
			if v, _ := doc.Find(`input[name="phone"]`).Attr("value"); v != "01012345678" {
				t.Errorf("phone not retained for resubmission: %q", v)
			}
			if doc.Find("form.registration-form button").Length() != 1 {
				t.Error("resubmit button missing")
			}
			if h.notifier.count() != 0 {
				t.Error("staff notified about a failed submission")
			}
		})
	}
}

func TestRegisterSubmit_NotifierFailureIsHidden(t *testing.T) {
	h := newHarness(t, allListings())
	h.notifier.err = errors.New("mail down")

	resp, doc := h.submit(t, "Python", validForm())
	h.server.Wait()

	if resp.StatusCode != http.StatusOK || doc.Find("p.success").Length() != 1 {
		t.Errorf("status = %d, notifier failure changed the submission outcome", resp.StatusCode)
	}
}

func TestRegisterSubmit_RequiresCSRFToken(t *testing.T) {
	h := newHarness(t, allListings())

	resp, err := h.client.PostForm(h.ts.URL+"/register", validForm())
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
	if h.submitter.hits != 0 {
		t.Error("tokenless form reached the submitter")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t, allListings())

	resp, err := h.client.Get(h.ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "ok" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}

	resp, err = h.client.Get(h.ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), `"counters"`) {
		t.Errorf("metrics body = %s", body)
	}
}

func TestNew_Validation(t *testing.T) {
	renderer, err := site.New(site.Options{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no source", Config{Renderer: renderer, Submitter: &fakeSubmitter{}, CSRFKey: make([]byte, 32)}},
		{"short key", Config{Source: allListings(), Renderer: renderer, Submitter: &fakeSubmitter{}, CSRFKey: []byte("short")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	h := newHarness(t, allListings())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.server.Serve(ctx, ln) }()

	healthURL := "http://" + ln.Addr().String() + "/healthz"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		if resp, err = http.Get(healthURL); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never answered: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
