// Package pkgerror is the shared error vocabulary of the service.
//
// Inner layers return plain errors or the ErrNotFound sentinel; the usecase
// layer wraps them into the typed Error, which the HTTP edge maps onto a
// status code and a client-safe message.
package pkgerror
