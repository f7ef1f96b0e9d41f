// Package coursevault provides the content and record backend for an
// educational portal: study materials, question banks and update notices
// with attached files, plus student/faculty/admin rosters, attendance and
// SMS logs.
//
// It exposes a single Service interface that orchestrates file upload and
// retrieval, record persistence, and roster management. Implementations of
// repositories (memory, Postgres) and blob stores (filesystem, Postgres,
// S3, memory) are provided under subpackages.
//
// Blob References
//
// A content record points at its bytes through a BlobReference, which names
// exactly one backend location: a relative path for filesystem storage or an
// opaque id for blobstore storage. Records without a file carry a nil
// reference. Stores for both kinds can be mounted at once so that records
// written before a backend switch stay readable; which store receives new
// uploads is fixed at construction time.
package coursevault
