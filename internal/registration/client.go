package registration

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/menofiaacademy/academy-site/internal/logger"
)

// DefaultEndpoint is the academy's Apps Script collection endpoint.
const DefaultEndpoint = "https://script.google.com/macros/s/AKfycbxfw8vs9k13xNE3jpWTDaC84DP2PbUnKZFPLEuTFA1OqY-ljg0E89qXfWE4uheWvqtKog/exec"

// ErrSubmission is matched by every *SubmissionError.
var ErrSubmission = errors.New("registration submission failed")

// SubmissionError reports that the endpoint could not be reached.
type SubmissionError struct {
	Endpoint string
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submitting registration to %s: %v", e.Endpoint, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmission
}

// Client posts registrations to a fixed endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Client for endpoint. An empty endpoint means DefaultEndpoint.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
	}
}

// Endpoint returns the URL registrations are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit sends data as one JSON POST. It returns nil once any response has been
// received; the response status and body are not interpreted.
func (c *Client) Submit(data Data) error {
	id := uuid.New().String()
	fields := logger.Fields{
		"submission_id": id,
		"course":        data.CourseTitle,
	}
	start := time.Now()

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding registration: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.IncrCounter("registration.failed")
		logger.Error("Registration submission failed", fields, err)
		return &SubmissionError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	fields["status"] = resp.StatusCode
	logger.IncrCounter("registration.submitted")
	logger.RecordTiming("registration.submit", time.Since(start))
	logger.Info("Registration submitted", fields)
	return nil
}
