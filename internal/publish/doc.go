// Package publish writes the static build to an output directory.
//
// Pages are written through a temporary file and renamed into place, so a web
// server reading the directory never sees a half-written page. A manifest.json
// next to the pages records when the data was loaded and which listings were
// degraded.
package publish
