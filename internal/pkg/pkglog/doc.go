// Package pkglog configures structured logging for the whole process.
//
// The package wraps slog rather than replacing it: callers keep using
// slog.InfoContext and friends, while InitLogging swaps the default handler
// for a JSON one with stable field names and a wrapper that stamps every
// record with the service name and the request correlation ID.
package pkglog
