// Package site renders the academy's pages from a catalog snapshot.
//
// Pages are html/template files embedded in the binary and share one layout
// (header navigation, degraded-data notice, footer). The same renderer serves
// the HTTP front end and the static build; only the link style differs.
//
// Inspect reads a rendered page back with goquery and counts what it shows,
// which the build command and the tests use to check output.
package site
