// Package pkgroutine runs background work under a concurrency cap.
//
// Modules hand long-running tasks to a shared Manager instead of calling go
// directly: the Manager bounds how many run at once, keeps their errors for
// shutdown reporting, and contains panics.
package pkgroutine
