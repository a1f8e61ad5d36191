package core

import "context"

// FileStore keeps uploaded files and returns the URL they can be fetched from.
// It applies no size or type policy.
type FileStore interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
}
