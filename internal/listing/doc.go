// Package listing turns the academy's spreadsheet CSV exports into typed records.
//
// Three listings are parsed: courses, team members (split into team and volunteers)
// and accreditations. The parsers tolerate loosely structured sheets: rows with the
// wrong number of fields, or whose designating field is blank or the "##" skip
// marker, are dropped without error. Commas are split with a quote-parity rule
// rather than full RFC 4180 quoting so that existing sheets keep parsing the way
// they always have. Parsers never return errors; a sheet missing a required column
// yields an empty listing and an ERROR log entry.
package listing
