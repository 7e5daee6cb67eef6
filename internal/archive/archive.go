// Package archive stores retrieved vendor documents so assessments keep an
// auditable copy of the evidence they scored. The production store is
// S3-compatible object storage via minio; an in-memory store backs tests and
// single-shot CLI runs.
package archive

import "context"

// Archiver persists retrieved document bytes. Save returns a location string
// recorded on the document summary; implementations must be safe for
// concurrent use.
type Archiver interface {
	// Save stores body under key and returns its storage location
	Save(ctx context.Context, key string, contentType string, body []byte) (string, error)
	// Read returns the stored bytes for a previously returned location
	Read(ctx context.Context, location string) ([]byte, error)
}
