// Package vpath normalizes the paths that cross the filesystem API
// boundary into a single canonical form: no leading separator, no "./"
// prefix, no trailing separator, and the repository root as "".
package vpath

import "strings"

// Normalize strips a leading run of "/" characters, leading "./"
// prefixes, and a trailing run of "/" characters from p, returning the
// canonical relative path. It is idempotent: Normalize(Normalize(p)) ==
// Normalize(p).
func Normalize(p string) string {
	for strings.HasPrefix(p, "/") {
		p = p[1:]
	}

	if p == "." || p == "./" {
		return ""
	}

	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}

	p = strings.TrimRight(p, "/")

	// Stripping "./" can expose a new leading "/" (".//a") or leave a
	// bare "." ("./."); normalize again so the result is a fixed point.
	if p == "." || strings.HasPrefix(p, "/") {
		return Normalize(p)
	}

	return p
}

// Join joins path segments with "/" and normalizes the result. It never
// produces a leading or trailing separator.
func Join(elem ...string) string {
	return Normalize(strings.Join(elem, "/"))
}

// Base returns the last path segment of a canonical path. Base("") is "".
func Base(p string) string {
	if p == "" {
		return ""
	}
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// Dir returns the canonical parent of p. Dir of a root-level path ("a")
// is "". Dir("") is "".
func Dir(p string) string {
	if p == "" {
		return ""
	}
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// Split breaks a canonical path into its segments. Split("") returns an
// empty slice.
func Split(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Depth returns the number of path segments. Depth("") is 0.
func Depth(p string) int {
	return len(Split(p))
}
