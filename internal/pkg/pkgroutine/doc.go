// Package pkgroutine contains helpers for running goroutines safely.
//
// The Manager type limits concurrency, collects returned errors, and logs
// panics so that background work does not crash the process silently.
// Every schedules periodic jobs such as the session store janitor.
package pkgroutine
