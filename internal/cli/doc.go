// Package cli implements the command-line interface for academy-site.
//
// The cli package provides the Cobra-based commands: check prints the current
// listings (text/JSON, sorted by source order, title or price), build renders
// the static pages, serve runs the HTTP front end, and inspect summarizes a
// rendered page. It coordinates the source, catalog, site, publish and server
// packages.
package cli
