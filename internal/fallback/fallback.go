// Package fallback embeds the local copies of the listing sheets that are served
// when the published spreadsheets cannot be reached.
package fallback

import "embed"

// Bundled locators, relative to Files.
const (
	Courses        = "courses.csv"
	Team           = "team.csv"
	Accreditations = "accreditations.csv"
)

// Files holds the bundled CSV exports.
//
//go:embed *.csv
var Files embed.FS
