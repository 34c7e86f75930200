// Package storage provides the fallback composition of stores and the backend
// adapters that satisfy the interfaces.Store contract.
//
// # Composite
//
// Composite tries its sources in registration order and returns the first
// value found. Sources reporting not found or not available are skipped; any
// other error aborts the lookup. Hits from sources registered with
// cacheResult are written into the single configured cache:
//
//	composite := storage.NewComposite(logger)
//	composite.AppendCache(storage.NewMemoryStore("", true, nil), true)
//	composite.AppendSource(storage.NewAnonymousS3Store("us-west-2", logger), true)
//	data, err := composite.Get(ctx, "s3://bucket/key")
//
// # Backends
//
// Each backend accepts one URI syntax:
//
//   - s3://bucket/key - S3Store, aws-sdk-go
//   - gs://bucket/path - GCSStore, Google Cloud Storage
//   - file:///absolute/path - FileStore, afero file systems
//   - vault://mount/path - VaultStore, KV v2 secrets engine
//   - ipfs://<cid>[/path] - IPFSStore, read-only
//   - <prefix>:<key> - MemoryStore and LRUStore
//
// Factory maps a location URI to the shared backend for its scheme.
//
// # Validity
//
// Every store calls CheckValid before touching its backend, so invalid URIs
// fail with interfaces.InvalidURIError without any I/O. Put dispatches to
// stores implementing interfaces.WritableStore and reports
// interfaces.ErrNotImplemented for the others.
package storage
