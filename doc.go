// Package blobstore provides a pluggable storage abstraction for large
// binary objects.
//
// Applications read, write, and serve blobs through the [Backend] interface
// without knowing which backing object store holds them. Two families of
// backends exist:
//
//   - Immutable blob stores ([github.com/parcelfs/blobstore/immutable]):
//     objects are committed to a remote blob service out of band and the
//     local process only ever handles references to them. Save accepts
//     blob-backed content only; raw byte streams are rejected.
//   - Mutable object stores ([github.com/parcelfs/blobstore/gcs],
//     [github.com/parcelfs/blobstore/s3],
//     [github.com/parcelfs/blobstore/file]): Save streams arbitrary content
//     into the store and finalizes it atomically; readers never observe
//     partially written objects.
//
// Uploads that were streamed directly into a remote store are recognized
// ahead of generic multipart handling by
// [github.com/parcelfs/blobstore/upload], and stored blobs are served over
// HTTP with byte-range delegation by
// [github.com/parcelfs/blobstore/httpserve].
//
// No operation in this package buffers a whole object in memory for
// serving; reads are streamed in bounded chunks via [ChunkIterator].
package blobstore
