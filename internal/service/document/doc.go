// Package document implements document intake and retrieval.
//
// Uploads are split in two: content bytes go to the blob store, the
// metadata record goes to the Repository. A record always points at its
// blob through BlobName, so content retrieval is a metadata lookup
// followed by a blob fetch.
//
// The service layer contains pure business logic and depends on the
// Repository interface defined in repository.go. It never imports
// net/http or database/sql directly.
package document
