// Package source retrieves listing text, preferring the published spreadsheet and
// falling back to a bundled copy.
//
// A locator is either an http(s) URL, fetched with a GET request, or the name of a
// file in the fetcher's fallback file system. Each fetch makes at most two
// attempts: the primary locator, then the backup. Falling back logs one warning;
// when both attempts fail the caller receives an *UnavailableError.
package source
