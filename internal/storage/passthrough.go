package storage

import (
	"context"
	"log/slog"
	"strings"

	"community-api/pkg/apierror"
)

// PassthroughBackend stores nothing: the caller-supplied value becomes the
// URL verbatim. Used outside production.
type PassthroughBackend struct {
	logger *slog.Logger
}

func NewPassthroughBackend(logger *slog.Logger) *PassthroughBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &PassthroughBackend{logger: logger}
}

func (b *PassthroughBackend) Name() string {
	return "passthrough"
}

func (b *PassthroughBackend) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	source := strings.TrimSpace(in.Source)
	if source == "" {
		return UploadResult{}, apierror.Validation("media source cannot be empty", "")
	}

	publicID, err := publicIDFor(in)
	if err != nil {
		return UploadResult{}, err
	}

	b.logger.DebugContext(ctx, "passthrough media stored", slog.String("public_id", publicID))
	return UploadResult{PublicID: publicID, URL: source}, nil
}

func (b *PassthroughBackend) Destroy(ctx context.Context, publicID string) error {
	b.logger.DebugContext(ctx, "passthrough media destroyed", slog.String("public_id", publicID))
	return nil
}
