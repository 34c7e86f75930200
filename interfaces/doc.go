// Package interfaces defines the contracts shared by every store in the system,
// separating them from the backend implementations.
//
// # Store Interfaces
//
//   - Store: validity check, name and get over an opaque URI key space
//   - WritableStore: a Store that additionally supports put
//   - URIHinter: optional description of the accepted URI syntax
//
// # Error Taxonomy
//
// Callers distinguish failures with errors.Is against the sentinels:
//
//   - ErrInvalidURI: malformed input, never retried (*InvalidURIError)
//   - ErrNotFound: valid key, absent value (*NotFoundError)
//   - ErrInvalidData: hash verification mismatch, also matches ErrNotFound (*InvalidDataError)
//   - ErrNotAvailable: backend unreachable or unauthenticated (*NotAvailableError)
//   - ErrNotImplemented: optional operation unsupported (*NotImplementedError)
//
// ErrNotFound and ErrNotAvailable are deliberately distinct so that fallback
// chains can tell a missing key from a broken backend.
package interfaces
