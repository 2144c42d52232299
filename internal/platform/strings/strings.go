// Package strings provides small string and slice helpers
package strings

import std "strings"

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// FirstNonBlank returns the first value with non whitespace content, or ""
func FirstNonBlank(vals ...string) string {
	for _, v := range vals {
		if std.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// CollapseSpace trims s and folds every whitespace run into one space
func CollapseSpace(s string) string { return std.Join(std.Fields(s), " ") }
