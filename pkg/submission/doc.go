// Package submission turns a session's answers and alerts into the payload
// posted to the backend, checks mandatory items, and classifies persistence
// failures.
package submission
