// Package config reads the site's settings from ACADEMY_* environment variables.
// Command-line flags take precedence; they default to these values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/menofiaacademy/academy-site/internal/catalog"
	"github.com/menofiaacademy/academy-site/internal/logger"
	"github.com/menofiaacademy/academy-site/internal/registration"
)

// Environment variables.
const (
	EnvCoursesURL        = "ACADEMY_COURSES_URL"
	EnvTeamURL           = "ACADEMY_TEAM_URL"
	EnvAccreditationsURL = "ACADEMY_ACCREDITATIONS_URL"
	EnvFallbackDir       = "ACADEMY_FALLBACK_DIR"
	EnvRegistrationURL   = "ACADEMY_REGISTRATION_URL"
	EnvAddr              = "ACADEMY_ADDR"
	EnvCSRFSecret        = "ACADEMY_CSRF_SECRET"
	EnvSecureCookies     = "ACADEMY_SECURE_COOKIES"
	EnvResendKey         = "ACADEMY_RESEND_KEY"
	EnvNotifyFrom        = "ACADEMY_NOTIFY_FROM"
	EnvNotifyTo          = "ACADEMY_NOTIFY_TO"
	EnvLogLevel          = "ACADEMY_LOG_LEVEL"
)

// Defaults.
const (
	DefaultAddr       = ":8080"
	DefaultNotifyFrom = "Menofia Courses Academy <onboarding@resend.dev>"
	DefaultNotifyTo   = "mca.academy2019@gmail.com"
)

// Config holds every setting of the site.
type Config struct {
	Sources         catalog.Sources
	FallbackDir     string // empty means the bundled copies
	RegistrationURL string
	Addr            string
	CSRFSecret      string
	SecureCookies   bool
	ResendKey       string
	NotifyFrom      string
	NotifyTo        []string
	LogLevel        string
}

// FromEnv builds a Config from the environment, falling back to defaults.
func FromEnv() Config {
	defaults := catalog.DefaultSources()

	sources := catalog.Sources{
		Courses: catalog.Pair{
			Primary: envOrDefault(EnvCoursesURL, defaults.Courses.Primary),
			Backup:  defaults.Courses.Backup,
		},
		Team: catalog.Pair{
			Primary: envOrDefault(EnvTeamURL, defaults.Team.Primary),
			Backup:  defaults.Team.Backup,
		},
		Accreditations: catalog.Pair{
			Primary: envOrDefault(EnvAccreditationsURL, defaults.Accreditations.Primary),
			Backup:  defaults.Accreditations.Backup,
		},
	}

	return Config{
		Sources:         sources,
		FallbackDir:     os.Getenv(EnvFallbackDir),
		RegistrationURL: envOrDefault(EnvRegistrationURL, registration.DefaultEndpoint),
		Addr:            envOrDefault(EnvAddr, DefaultAddr),
		CSRFSecret:      os.Getenv(EnvCSRFSecret),
		SecureCookies:   envBool(EnvSecureCookies, false),
		ResendKey:       os.Getenv(EnvResendKey),
		NotifyFrom:      envOrDefault(EnvNotifyFrom, DefaultNotifyFrom),
		NotifyTo:        splitList(envOrDefault(EnvNotifyTo, DefaultNotifyTo)),
		LogLevel:        envOrDefault(EnvLogLevel, string(logger.LevelInfo)),
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
	}
	for name, p := range map[string]catalog.Pair{
		"courses":        c.Sources.Courses,
		"team":           c.Sources.Team,
		"accreditations": c.Sources.Accreditations,
	} {
		if p.Primary == "" {
			return fmt.Errorf("missing %s source", name)
		}
	}
	if c.RegistrationURL == "" {
		return fmt.Errorf("missing registration endpoint")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("Ignoring invalid boolean setting", logger.Fields{"key": key, "value": v})
		return fallback
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
