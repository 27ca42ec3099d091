package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/menofiaacademy/academy-site/internal/fallback"
	"github.com/menofiaacademy/academy-site/internal/logger"
)

const UserAgent = "academy-site/1.0 (+https://www.facebook.com/menofiaacademy)"

// ErrDataUnavailable is matched by every *UnavailableError.
var ErrDataUnavailable = errors.New("data unavailable")

// UnavailableError reports that neither the primary nor the backup locator
// produced any text. Locator is the backup that was tried last.
type UnavailableError struct {
	Locator string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("data unavailable from %s: %v", e.Locator, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}

// Fetcher retrieves text from HTTP URLs and from a local file system.
type Fetcher struct {
	client *http.Client
	files  fs.FS
	log    *logger.Logger
}

// New creates a Fetcher whose non-URL locators resolve against the bundled
// fallback CSVs.
func New() *Fetcher {
	return NewWithFiles(fallback.Files)
}

// NewWithFiles creates a Fetcher whose non-URL locators resolve against files,
// e.g. os.DirFS for a deployment that ships its own fallback directory.
func NewWithFiles(files fs.FS) *Fetcher {
	return &Fetcher{
		client: &http.Client{},
		files:  files,
	}
}

// getLogger returns the fetcher's logger, or the package default.
func (f *Fetcher) getLogger() *logger.Logger {
	if f.log != nil {
		return f.log
	}
	return logger.Default()
}

// FetchWithFallback returns the text at primary, or at backup when primary fails
// with a transport error or a non-2xx status. No further attempts are made.
func (f *Fetcher) FetchWithFallback(primary, backup string) (string, error) {
	text, err := f.Fetch(primary)
	if err == nil {
		return text, nil
	}

	logger.IncrCounter("source.fallback")
	f.getLogger().Warn("Primary source failed, falling back to backup", logger.Fields{
		"primary": primary,
		"backup":  backup,
		"cause":   err.Error(),
	})

	text, err = f.Fetch(backup)
	if err != nil {
		logger.IncrCounter("source.unavailable")
		return "", &UnavailableError{Locator: backup, Err: err}
	}
	return text, nil
}

// Fetch returns the text at a single locator.
func (f *Fetcher) Fetch(locator string) (string, error) {
	if IsURL(locator) {
		return f.fetchURL(locator)
	}
	return f.readFile(locator)
}

func (f *Fetcher) fetchURL(url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return string(body), nil
}

func (f *Fetcher) readFile(locator string) (string, error) {
	if f.files == nil {
		return "", fmt.Errorf("reading %s: no fallback files configured", locator)
	}
	data, err := fs.ReadFile(f.files, strings.TrimPrefix(locator, "/"))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", locator, err)
	}
	return string(data), nil
}

// IsURL reports whether locator is fetched over HTTP rather than read from files.
func IsURL(locator string) bool {
	lower := strings.ToLower(locator)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
