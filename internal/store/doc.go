// Package store is the local collection cache and synchronization manager.
//
// The Manager keeps the last fetched data document in memory as a map from
// collection name to the encoded record list, together with the version
// token of that fetch. Reads never trigger I/O.
//
// Writes reach the remote document in two ways:
//   - Update: a single collection is replaced in the cache immediately and a
//     debounced Flush writes the whole document later.
//   - Batch: Begin returns a unit of work over a clone of the cache. Put
//     writes into the batch only; Commit builds the complete next document
//     and replaces it remotely exactly once, then swaps the batch into the
//     cache. A batch that fails to commit leaves the cache untouched.
//
// Remote writes are serialized. A batch records every collection it read or
// wrote; if one of them changed in the cache after Begin, Commit fails with a
// version conflict instead of overwriting the newer state. A remote version
// conflict makes the Manager fetch the document again; replaying business
// logic is the caller's decision.
//
// Save lifecycle per write cycle:
//
//	idle -> dirty -> saving -> saved
//	                        -> conflict -> idle
//	                        -> failed
package store
