// Package pkgerror defines shared error types and sentinel errors used across
// the application.
//
// It helps keep error handling consistent by:
//   - Providing sentinel errors that can be checked with errors.Is.
//   - Providing a structured Error type that carries a message, type, code and
//     optional per-item details, which handlers map to HTTP responses.
package pkgerror
