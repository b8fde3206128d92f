// Package pkgrouter is the HTTP edge shared by every module: a thin wrapper
// over httprouter whose handlers return values instead of writing them, a
// uniform JSON envelope for results and errors, and the middleware stack
// (panic recovery, correlation IDs, request/response logging) applied to all
// registered routes.
package pkgrouter
