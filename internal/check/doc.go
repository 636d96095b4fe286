// Package check verifies that every series file in a directory exposes the
// same set of timestamps.
//
// The first readable file (by name) is the reference. Each later file is
// compared as a set, so duplicate rows and row order do not matter. Files
// that cannot be read are skipped but make the result inconsistent.
package check
