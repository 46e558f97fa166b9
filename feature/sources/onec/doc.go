// Package onec adapts the 1C business-system HTTP API as a catalog
// record source.
//
// The client authenticates with a token header, pages through the
// short-product listing with limit/offset parameters, and rate-limits
// its requests. An HTTP 201 response stands for an empty page, an
// upstream quirk.
//
// The adapter normalizes products into records keyed by article;
// failures are classified as transient (retryable) or fatal.
package onec
