// Package master persists the single encrypted master-password record.
package master

import "context"

// Repository stores the encrypted master secret. There is at most one
// record and it is never deleted.
type Repository interface {
	// Get returns the stored ciphertext or common.ErrNotFound.
	Get(ctx context.Context) ([]byte, error)

	// Put replaces the stored ciphertext, creating the record if needed.
	Put(ctx context.Context, secret []byte) error

	// CreateIfAbsent stores secret only when no record exists and reports
	// whether it did.
	CreateIfAbsent(ctx context.Context, secret []byte) (bool, error)
}
