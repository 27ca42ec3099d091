package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/menofiaacademy/academy-site/internal/catalog"
	"github.com/menofiaacademy/academy-site/internal/listing"
	"github.com/menofiaacademy/academy-site/internal/site"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// parseFormat validates a --format value
func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(s)
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// DegradedListing names a listing that could not be loaded
type DegradedListing struct {
	Listing string `json:"listing"`
	Error   string `json:"error"`
}

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt      time.Time               `json:"checked_at"`
	Courses        []listing.Course        `json:"courses"`
	Team           []listing.TeamMember    `json:"team"`
	Volunteers     []listing.TeamMember    `json:"volunteers"`
	Accreditations []listing.Accreditation `json:"accreditations"`
	Degraded       []DegradedListing       `json:"degraded,omitempty"`
}

// newOutputResult converts a snapshot for output
func newOutputResult(snap catalog.Snapshot) *OutputResult {
	result := &OutputResult{
		CheckedAt:      snap.LoadedAt,
		Courses:        snap.Courses,
		Team:           snap.Team.Team,
		Volunteers:     snap.Team.Volunteers,
		Accreditations: snap.Accreditations,
	}
	for _, f := range snap.Failures {
		result.Degraded = append(result.Degraded, DegradedListing{Listing: f.Listing, Error: f.Err.Error()})
	}
	return result
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if len(result.Courses) == 0 {
		fmt.Fprintln(w, "No courses found.")
	} else {
		fmt.Fprintf(w, "Courses (%d):\n", len(result.Courses))
		for _, c := range result.Courses {
			fmt.Fprintf(w, "  %s - %s\n", c.Title, site.PriceLabel(c.Price))
			if verbose {
				fmt.Fprintf(w, "     Instructor: %s\n", c.Instructor)
				fmt.Fprintf(w, "     Days: %s\n", c.Days)
				fmt.Fprintf(w, "     Time: %s\n", c.Time)
				fmt.Fprintf(w, "     Image: %s\n", c.ImageURL)
			}
		}
	}

	writeMembers(w, "Team", result.Team)
	writeMembers(w, "Volunteers", result.Volunteers)
	fmt.Fprintf(w, "\nAccreditations: %d\n", len(result.Accreditations))

	if len(result.Degraded) > 0 {
		fmt.Fprintln(w, "\nDegraded listings:")
		for _, d := range result.Degraded {
			fmt.Fprintf(w, "  %s: %s\n", d.Listing, d.Error)
		}
	}

	return nil
}

func writeMembers(w io.Writer, label string, members []listing.TeamMember) {
	if len(members) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d):\n", label, len(members))
	for _, m := range members {
		fmt.Fprintf(w, "  %s - %s\n", m.Name, m.JobTitle)
	}
}

// writeSummary outputs an inspected page summary
func writeSummary(w io.Writer, target string, summary site.Summary, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, struct {
			Target string `json:"target"`
			site.Summary
		}{target, summary})
	}

	fmt.Fprintf(w, "%s\n", target)
	fmt.Fprintf(w, "  Courses:        %d\n", summary.Courses)
	fmt.Fprintf(w, "  Team:           %d\n", summary.Team)
	fmt.Fprintf(w, "  Volunteers:     %d\n", summary.Volunteers)
	fmt.Fprintf(w, "  Accreditations: %d\n", summary.Accreditations)
	if summary.Notice {
		fmt.Fprintln(w, "  Degraded notice shown")
	}
	return nil
}
