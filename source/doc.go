// Package source defines the upstream data feeds that ground a
// narrative (schedule, odds, trends, player props) and the fan-out
// coordinator that fetches them concurrently with per-source isolation.
//
// Every feed is behind a small interface so that live HTTP providers,
// file-backed fixtures, and test stubs are interchangeable. The
// coordinator never fails the whole fetch because one feed failed: each
// source reports its own error string and the caller decides how to
// degrade.
package source
