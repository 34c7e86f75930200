// Package sha1store implements content-addressed stores keyed by SHA-1.
//
// Keys are 40 hex characters. Store and Cache map keys onto a base store
// under a prefix, APISource fetches keys from a remote API and Composite
// canonicalizes keys (lowercase, optional sha1:// prefix removed) before
// running the storage.Composite fallback chain. With verification enabled,
// payloads whose digest differs from their key fail with
// interfaces.InvalidDataError, which callers checking for
// interfaces.ErrNotFound treat as absent.
package sha1store
