package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/csrf"

	"github.com/menofiaacademy/academy-site/internal/catalog"
	"github.com/menofiaacademy/academy-site/internal/listing"
	"github.com/menofiaacademy/academy-site/internal/logger"
	"github.com/menofiaacademy/academy-site/internal/notifier"
	"github.com/menofiaacademy/academy-site/internal/registration"
	"github.com/menofiaacademy/academy-site/internal/site"
)

const (
	notifyTimeout   = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Submitter forwards a registration upstream.
type Submitter interface {
	Submit(data registration.Data) error
}

// Config wires a Server.
type Config struct {
	Source        catalog.TextSource
	Sources       catalog.Sources
	Renderer      *site.Renderer
	Submitter     Submitter
	Notifier      notifier.Notifier // optional
	CSRFKey       []byte
	SecureCookies bool
}

// Server serves the academy pages and the registration form.
type Server struct {
	source    catalog.TextSource
	sources   catalog.Sources
	renderer  *site.Renderer
	submitter Submitter
	notifier  notifier.Notifier
	handler   http.Handler

	notifications sync.WaitGroup
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Source == nil || cfg.Renderer == nil || cfg.Submitter == nil {
		return nil, fmt.Errorf("server requires a source, a renderer and a submitter")
	}
	if len(cfg.CSRFKey) != 32 {
		return nil, fmt.Errorf("CSRF key must be 32 bytes, got %d", len(cfg.CSRFKey))
	}

	s := &Server{
		source:    cfg.Source,
		sources:   cfg.Sources,
		renderer:  cfg.Renderer,
		submitter: cfg.Submitter,
		notifier:  cfg.Notifier,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleListing(site.PageHome))
	mux.HandleFunc("GET /courses", s.handleListing(site.PageCourses))
	mux.HandleFunc("GET /team", s.handleListing(site.PageTeam))
	mux.HandleFunc("GET /register", s.handleRegisterForm)
	mux.HandleFunc("POST /register", s.handleRegisterSubmit)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /metrics", handleMetrics)

	s.handler = Chain(mux,
		LogRequests,
		SecurityHeaders,
		CSRF(cfg.CSRFKey, cfg.SecureCookies),
	)

	return s, nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Wait blocks until every background notification has finished.
func (s *Server) Wait() {
	s.notifications.Wait()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and waits for pending notifications.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", logger.Fields{"addr": ln.Addr().String()})
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.Wait()
	return nil
}

func (s *Server) handleListing(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := catalog.Load(s.source, s.sources)

		var buf bytes.Buffer
		if err := s.renderer.Render(&buf, page, snap); err != nil {
			internalError(w, err)
			return
		}
		writeHTML(w, http.StatusOK, &buf)
	}
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("course")
	view := site.RegisterView{
		CourseTitle: title,
		CSRFField:   csrf.TemplateField(r),
	}

	notice := ""
	courses, err := catalog.LoadCourses(s.source, s.sources)
	if err != nil {
		notice = catalog.DegradedNotice
	}

	status := http.StatusOK
	if course, ok := catalog.FindCourse(courses, title); ok {
		view.CourseTitle = course.Title
		view.Course = &course
	} else {
		view.Error = site.MessageCourseNotFound
		status = http.StatusNotFound
	}

	s.renderRegister(w, status, view, notice)
}

func (s *Server) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	data := registration.Data{
		CourseTitle:  r.PostFormValue(registration.FieldCourseTitle),
		Name:         r.PostFormValue(registration.FieldName),
		Phone:        r.PostFormValue(registration.FieldPhone),
		Email:        r.PostFormValue(registration.FieldEmail),
		DiscountCode: r.PostFormValue(registration.FieldDiscountCode),
	}.Normalize()

	view := site.RegisterView{
		CourseTitle: data.CourseTitle,
		Course:      &listing.Course{Title: data.CourseTitle},
		Values:      data,
		CSRFField:   csrf.TemplateField(r),
	}

	if err := data.Validate(); err != nil {
		var vErr *registration.ValidationError
		if errors.As(err, &vErr) && vErr.Field == registration.FieldCourseTitle {
			view.Course = nil
			view.Error = site.MessageCourseNotFound
		} else {
			view.Error = site.MessageInvalid
		}
		logger.IncrCounter("registration.invalid")
		s.renderRegister(w, http.StatusBadRequest, view, "")
		return
	}

	if err := s.submitter.Submit(data); err != nil {
		status := http.StatusInternalServerError
		view.Error = site.MessageUnexpected
		if errors.Is(err, registration.ErrSubmission) {
			status = http.StatusBadGateway
			view.Error = site.MessageSubmitFailed
		}
		s.renderRegister(w, status, view, "")
		return
	}

	s.notify(r.Context(), data)

	view.Success = true
	view.Values = registration.Data{}
	s.renderRegister(w, http.StatusOK, view, "")
}

// notify announces data to staff in the background. Failures are logged only.
func (s *Server) notify(ctx context.Context, data registration.Data) {
	if s.notifier == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()

		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, data); err != nil {
			logger.Error("Staff notification failed", logger.Fields{"course": data.CourseTitle}, err)
		}
	}()
}

func (s *Server) renderRegister(w http.ResponseWriter, status int, view site.RegisterView, notice string) {
	var buf bytes.Buffer
	if err := s.renderer.RenderRegister(&buf, view, notice); err != nil {
		internalError(w, err)
		return
	}
	writeHTML(w, status, &buf)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(logger.GetMetricsSnapshot()); err != nil {
		logger.Error("Encoding metrics failed", nil, err)
	}
}

func writeHTML(w http.ResponseWriter, status int, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	logger.Error("Internal error", nil, err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
