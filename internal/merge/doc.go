// Package merge joins per-region series files into one wide table keyed by
// timestamp.
//
// Columns are the sorted region codes that contributed at least one point.
// Rows are the sorted union of canonical timestamp keys, so "10:00:00" and
// "10:00:00.000" collapse into one row. Absent cells hold the NA sentinel.
package merge
