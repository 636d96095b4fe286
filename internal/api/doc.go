// Package api provides the client for the Transparency Report traffic fraction API.
//
// Endpoint:
//   - https://transparencyreport.google.com/transparencyreport/api/v3/traffic/fraction
//
// Query parameters: start (ms), end (ms), region (ISO 3166-1 alpha-2), product (21 = YouTube).
//
// Responses are prefixed with ")]}'\n" to defeat JSON hijacking and carry an
// undocumented nested-array payload; ExtractDataPoints is the only code that
// knows its shape.
package api
