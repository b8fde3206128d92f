// Package pkguid mints unique identifiers behind small interfaces, so code
// that needs an ID never hard-codes the strategy. String IDs are UUIDv7,
// numeric IDs are snowflakes; both sort by creation time.
package pkguid
