// Package seriesfile reads and writes per-region series files.
//
// File layout (UTF-8, comma separated):
//
//	date and time,value
//	2023-01-01 10:00:00.123,75.5
//
// The file name without extension is the region code (US.csv). Timestamps are
// always written with milliseconds and accepted with or without them on read.
package seriesfile
