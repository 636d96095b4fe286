// Package model defines shared data types used across the traffic downloader tools.
//
// Conventions:
//   - Timestamps on the wire: int64 milliseconds since Unix epoch
//   - Timestamps on disk: "YYYY-MM-DD HH:MM:SS.mmm" in UTC
//   - Values: decimal.Decimal, so a value read from JSON is written back verbatim
package model
