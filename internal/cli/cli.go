package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/menofiaacademy/academy-site/internal/catalog"
	"github.com/menofiaacademy/academy-site/internal/config"
	"github.com/menofiaacademy/academy-site/internal/crypto"
	"github.com/menofiaacademy/academy-site/internal/listing"
	"github.com/menofiaacademy/academy-site/internal/logger"
	"github.com/menofiaacademy/academy-site/internal/notifier"
	"github.com/menofiaacademy/academy-site/internal/publish"
	"github.com/menofiaacademy/academy-site/internal/registration"
	"github.com/menofiaacademy/academy-site/internal/server"
	"github.com/menofiaacademy/academy-site/internal/site"
	"github.com/menofiaacademy/academy-site/internal/source"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitDegraded = 2
)

// StatusError carries a non-zero exit code out of a command.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// options holds the flag values of one command tree
type options struct {
	cfg config.Config

	logLevel string
	verbose  bool

	format  string
	sort    string
	outDir  string
	regBase string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	o := &options{cfg: config.FromEnv()}

	cmd := &cobra.Command{
		Use:   "academy-site",
		Short: "Menofia Courses Academy website",
		Long: `Renders and serves the Menofia Courses Academy website.
Listings are read from the published sheets, falling back to bundled copies
when a sheet is unreachable.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: o.setup,
	}

	// Define flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.cfg.Sources.Courses.Primary, "courses-url", o.cfg.Sources.Courses.Primary, "Courses sheet CSV export URL")
	flags.StringVar(&o.cfg.Sources.Team.Primary, "team-url", o.cfg.Sources.Team.Primary, "Team sheet CSV export URL")
	flags.StringVar(&o.cfg.Sources.Accreditations.Primary, "accreditations-url", o.cfg.Sources.Accreditations.Primary, "Accreditations sheet CSV export URL")
	flags.StringVar(&o.cfg.FallbackDir, "fallback-dir", o.cfg.FallbackDir, "Directory with backup CSVs (default: bundled copies)")
	flags.StringVar(&o.logLevel, "log-level", o.cfg.LogLevel, "Log level: debug, info, warn or error")
	flags.BoolVar(&o.verbose, "verbose", false, "Enable verbose output and debug logging")

	cmd.AddCommand(
		newCheckCmd(o),
		newBuildCmd(o),
		newServeCmd(o),
		newInspectCmd(o),
	)

	return cmd
}

// setup configures logging before any command runs
func (o *options) setup(cmd *cobra.Command, _ []string) error {
	o.cfg.LogLevel = o.logLevel
	if o.verbose {
		o.cfg.LogLevel = string(logger.LevelDebug)
	}
	if err := o.cfg.Validate(); err != nil {
		return err
	}

	level, _ := logger.ParseLevel(o.cfg.LogLevel)
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))
	return nil
}

// fetcher returns a source reading backups from --fallback-dir or the bundled copies
func (o *options) fetcher() *source.Fetcher {
	if o.cfg.FallbackDir != "" {
		return source.NewWithFiles(os.DirFS(o.cfg.FallbackDir))
	}
	return source.New()
}

func newCheckCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load every listing and print it",
		Long: `Loads every listing and prints it.
Exits 0 when all listings loaded, 2 when any listing was unavailable.`,
		Args: cobra.NoArgs,
		RunE: o.runCheck,
	}
	cmd.Flags().StringVar(&o.format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&o.sort, "sort", "source", "Course order: source, title or price")
	return cmd
}

// runCheck loads the catalog and reports it
func (o *options) runCheck(cmd *cobra.Command, _ []string) error {
	format, err := parseFormat(strings.ToLower(o.format))
	if err != nil {
		return err
	}
	order, err := parseSortOrder(o.sort)
	if err != nil {
		return err
	}

	if o.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Courses: %s\n", o.cfg.Sources.Courses.Primary)
		fmt.Fprintf(cmd.ErrOrStderr(), "Team: %s\n", o.cfg.Sources.Team.Primary)
		fmt.Fprintf(cmd.ErrOrStderr(), "Accreditations: %s\n", o.cfg.Sources.Accreditations.Primary)
	}

	snap := catalog.Load(o.fetcher(), o.cfg.Sources)

	courses := make([]listing.Course, len(snap.Courses))
	copy(courses, snap.Courses)
	sortCourses(courses, order)

	result := newOutputResult(snap)
	result.Courses = courses

	// Write output
	if err := WriteOutput(cmd.OutOrStdout(), result, format, o.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	// Set exit code based on whether any listing was degraded
	if snap.Degraded() {
		return &StatusError{Code: ExitDegraded}
	}
	return nil
}

func newBuildCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the static site",
		Long: `Renders the home, courses and team pages into an output directory.
Registration links point at --register-base, where "serve" handles the form.`,
		Args: cobra.NoArgs,
		RunE: o.runBuild,
	}
	cmd.Flags().StringVar(&o.outDir, "out", "public", "Output directory")
	cmd.Flags().StringVar(&o.regBase, "register-base", "", "Base URL of the running server (default: relative /register)")
	return cmd
}

// runBuild renders every listing page and writes it with a manifest
func (o *options) runBuild(cmd *cobra.Command, _ []string) error {
	renderer, err := site.New(site.Options{
		RegisterURL: strings.TrimSuffix(o.regBase, "/") + "/register",
		Static:      true,
	})
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	out, err := publish.New(o.outDir)
	if err != nil {
		return fmt.Errorf("initializing output: %w", err)
	}

	previous, err := out.LoadManifest()
	if err != nil {
		logger.Warn("Ignoring unreadable previous manifest", logger.Fields{"error": err.Error()})
		previous = nil
	}

	snap := catalog.Load(o.fetcher(), o.cfg.Sources)

	manifest := publish.Manifest{
		LoadedAt: snap.LoadedAt.Format(time.RFC3339),
		Counts: map[string]int{
			catalog.ListingCourses:        len(snap.Courses),
			catalog.ListingTeam:           snap.Team.Len(),
			catalog.ListingAccreditations: len(snap.Accreditations),
		},
	}
	for _, f := range snap.Failures {
		manifest.Degraded = append(manifest.Degraded, f.Listing)
	}

	for _, page := range site.ListingPages {
		var buf bytes.Buffer
		if err := renderer.Render(&buf, page, snap); err != nil {
			return err
		}

		summary, err := site.Inspect(bytes.NewReader(buf.Bytes()))
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", page, err)
		}

		name := site.FileName(page)
		if err := out.WriteFile(name, buf.Bytes()); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		manifest.Pages = append(manifest.Pages, name)

		logger.Info("Page written", logger.Fields{
			"page":           name,
			"courses":        summary.Courses,
			"team":           summary.Team,
			"volunteers":     summary.Volunteers,
			"accreditations": summary.Accreditations,
			"notice":         summary.Notice,
		})
	}

	for _, change := range publish.Diff(previous, manifest) {
		logger.Info("Listing changed since last build", logger.Fields{
			"listing":  change.Listing,
			"previous": change.Previous,
			"current":  change.Current,
		})
	}

	if err := out.SaveManifest(manifest); err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}

	if snap.Degraded() {
		logger.Warn("Site built with degraded data", logger.Fields{"degraded": manifest.Degraded})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d pages to %s\n", len(manifest.Pages), out.Root())
	return nil
}

func newServeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the website and registration form",
		Args:  cobra.NoArgs,
		RunE:  o.runServe,
	}
	cmd.Flags().StringVar(&o.cfg.Addr, "addr", o.cfg.Addr, "Listen address")
	cmd.Flags().StringVar(&o.cfg.RegistrationURL, "registration-url", o.cfg.RegistrationURL, "Endpoint registrations are posted to")
	cmd.Flags().BoolVar(&o.cfg.SecureCookies, "secure-cookies", o.cfg.SecureCookies, "Mark cookies Secure (site is served over HTTPS)")
	return cmd
}

// runServe runs the HTTP server until SIGINT or SIGTERM
func (o *options) runServe(cmd *cobra.Command, _ []string) error {
	srv, err := o.newServer(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, o.cfg.Addr)
}

// newServer wires the server from configuration
func (o *options) newServer(cmd *cobra.Command) (*server.Server, error) {
	renderer, err := site.New(site.Options{})
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	key, generated, err := crypto.KeyOrRandom(o.cfg.CSRFSecret)
	if err != nil {
		return nil, fmt.Errorf("creating CSRF key: %w", err)
	}
	if generated {
		logger.Warn("Using random CSRF key; forms will not survive a restart", logger.Fields{
			"set": config.EnvCSRFSecret,
		})
	}

	var n notifier.Notifier
	if o.cfg.ResendKey != "" {
		n, err = notifier.NewResendNotifier(o.cfg.ResendKey, o.cfg.NotifyFrom, o.cfg.NotifyTo)
		if err != nil {
			return nil, fmt.Errorf("configuring notifications: %w", err)
		}
		logger.Info("Staff notifications configured (Resend)", logger.Fields{"to": o.cfg.NotifyTo})
	} else {
		n = notifier.NewDryRunNotifierTo(cmd.OutOrStdout())
		logger.Info("Staff notifications in dry-run mode", logger.Fields{"set": config.EnvResendKey})
	}

	return server.New(server.Config{
		Source:        o.fetcher(),
		Sources:       o.cfg.Sources,
		Renderer:      renderer,
		Submitter:     registration.NewClient(o.cfg.RegistrationURL),
		Notifier:      n,
		CSRFKey:       key,
		SecureCookies: o.cfg.SecureCookies,
	})
}

func newInspectCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <url|file>",
		Short: "Summarize a rendered page",
		Args:  cobra.ExactArgs(1),
		RunE:  o.runInspect,
	}
	cmd.Flags().StringVar(&o.format, "format", "text", "Output format: text or json")
	return cmd
}

// runInspect fetches a page and prints what it shows
func (o *options) runInspect(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(strings.ToLower(o.format))
	if err != nil {
		return err
	}

	target := args[0]
	fetcher := source.NewWithFiles(os.DirFS("/"))
	locator := target
	if !source.IsURL(target) {
		abs, err := filepath.Abs(target)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", target, err)
		}
		locator = filepath.ToSlash(abs)
	}

	page, err := fetcher.Fetch(locator)
	if err != nil {
		return fmt.Errorf("fetching page: %w", err)
	}

	summary, err := site.Inspect(strings.NewReader(page))
	if err != nil {
		return err
	}
	return writeSummary(cmd.OutOrStdout(), target, summary, format)
}

// Execute runs the CLI
func Execute(version string) {
	cmd := NewRootCmd()
	cmd.Version = version

	if err := cmd.Execute(); err != nil {
		var status *StatusError
		if errors.As(err, &status) {
			os.Exit(status.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
