// Package server is the HTTP front end of the academy site.
//
// Listing pages load a fresh catalog snapshot on every request, so an edit to
// the published sheets shows up on the next page view. The registration form
// is protected by gorilla/csrf; a successful submission triggers a best-effort
// staff notification in the background.
package server
