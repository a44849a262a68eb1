// Package pkguid provides helpers for generating unique identifiers.
//
// Sessions are keyed by UUID strings and dataset revisions by Snowflake
// numbers. Callers depend on the StringID and NumberID interfaces so tests
// can substitute deterministic generators.
package pkguid
