package storage

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
)

// UploadInput describes one object write. PublicID is empty when the owner
// has no slot yet and a fresh id must be allocated under Folder.
type UploadInput struct {
	PublicID string
	Folder   string
	Source   string
}

// UploadResult is what the object store actually stored. Callers persist
// these values, never the input.
type UploadResult struct {
	PublicID string
	URL      string
}

// Backend is the Object Store Gateway. One implementation is chosen at
// startup.
type Backend interface {
	Name() string
	Upload(ctx context.Context, in UploadInput) (UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

// NewPublicID allocates a key of the form <folder>/<uuid>.
func NewPublicID(folder string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return uuid.NewString()
	}
	return path.Join(folder, uuid.NewString())
}

func publicIDFor(in UploadInput) (string, error) {
	if strings.TrimSpace(in.PublicID) == "" {
		return NewPublicID(in.Folder), nil
	}
	return ValidateKey(in.PublicID)
}
