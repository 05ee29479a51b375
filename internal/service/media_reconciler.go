package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"community-api/internal/metrics"
	"community-api/internal/model"
	"community-api/internal/storage"
	"community-api/pkg/apierror"
)

// Bound on the local write that follows a successful remote call. That write
// runs detached from the caller so a cancelled request cannot leave the slot
// pointing at a removed object.
const localWriteTimeout = 5 * time.Second

// MediaFolders maps each owner kind to its object store folder.
type MediaFolders struct {
	UserProfile string
	PostCover   string
}

func (f MediaFolders) For(kind model.OwnerKind) string {
	if kind == model.OwnerPostCover {
		return f.PostCover
	}
	return f.UserProfile
}

// AssetReconciler converges a MediaSlot and its remote object to a desired
// value. The remote side is always written or removed before the local row.
type AssetReconciler struct {
	slots   MediaStore
	backend storage.Backend
	folders MediaFolders
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewAssetReconciler(slots MediaStore, backend storage.Backend, folders MediaFolders, m *metrics.Metrics, logger *slog.Logger) *AssetReconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetReconciler{
		slots:   slots,
		backend: backend,
		folders: folders,
		metrics: m,
		logger:  logger.With(slog.String("backend", backend.Name())),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *AssetReconciler) Reconcile(ctx context.Context, ownerID string, kind model.OwnerKind, desired model.DesiredMedia) error {
	if desired.Absent() {
		r.metrics.ObserveReconcile(string(kind), metrics.ActionNoop, metrics.ResultOK)
		return nil
	}

	if !kind.Valid() {
		return apierror.Internal("unknown media owner kind", fmt.Errorf("owner kind %q", kind))
	}

	slot, found, err := r.currentSlot(ctx, ownerID, kind)
	if err != nil {
		return err
	}

	if desired.Empty() {
		if !found {
			r.metrics.ObserveReconcile(string(kind), metrics.ActionNoop, metrics.ResultOK)
			return nil
		}
		return r.remove(ctx, slot)
	}

	return r.upload(ctx, ownerID, kind, slot, desired.Value())
}

func (r *AssetReconciler) currentSlot(ctx context.Context, ownerID string, kind model.OwnerKind) (model.MediaSlot, bool, error) {
	slot, err := r.slots.FindByOwner(ctx, ownerID, kind)
	if apierror.Is(err, apierror.KindNotFound) {
		return model.MediaSlot{}, false, nil
	}
	if err != nil {
		return model.MediaSlot{}, false, err
	}
	return slot, true, nil
}

// remove deletes the remote object first. If that fails nothing local
// changes and the caller may retry.
func (r *AssetReconciler) remove(ctx context.Context, slot model.MediaSlot) error {
	kind := string(slot.OwnerKind)

	if err := r.backend.Destroy(ctx, slot.PublicID); err != nil {
		r.metrics.ObserveReconcile(kind, metrics.ActionRemove, metrics.ResultFailed)
		return asAssetStoreError("media object could not be deleted", err)
	}

	lctx, cancel := r.localContext(ctx)
	defer cancel()
	if err := r.slots.DeleteByOwner(lctx, slot.OwnerID, slot.OwnerKind); err != nil {
		r.metrics.ObserveReconcile(kind, metrics.ActionRemove, metrics.ResultFailed)
		return err
	}

	r.metrics.ObserveReconcile(kind, metrics.ActionRemove, metrics.ResultOK)
	r.logger.InfoContext(ctx, "media removed",
		slog.String("owner_id", slot.OwnerID),
		slog.String("owner_kind", kind),
		slog.String("public_id", slot.PublicID),
	)
	return nil
}

// upload writes the remote object, reusing the slot's public id, and only
// then stores what the backend returned.
func (r *AssetReconciler) upload(ctx context.Context, ownerID string, kind model.OwnerKind, existing model.MediaSlot, source string) error {
	result, err := r.backend.Upload(ctx, storage.UploadInput{
		PublicID: existing.PublicID,
		Folder:   r.folders.For(kind),
		Source:   source,
	})
	if err != nil {
		r.metrics.ObserveReconcile(string(kind), metrics.ActionUpload, metrics.ResultFailed)
		return asAssetStoreError("media object could not be stored", err)
	}

	slot := model.MediaSlot{
		PublicID:  result.PublicID,
		URL:       result.URL,
		OwnerID:   ownerID,
		OwnerKind: kind,
		UpdatedAt: r.now(),
	}
	lctx, cancel := r.localContext(ctx)
	defer cancel()
	if err := r.slots.Upsert(lctx, slot); err != nil {
		r.metrics.ObserveReconcile(string(kind), metrics.ActionUpload, metrics.ResultFailed)
		r.metrics.ObserveOrphan(string(kind))
		r.logger.WarnContext(ctx, "orphaned media object",
			slog.String("owner_id", ownerID),
			slog.String("owner_kind", string(kind)),
			slog.String("public_id", result.PublicID),
			slog.Any("error", err),
		)
		return err
	}

	r.metrics.ObserveReconcile(string(kind), metrics.ActionUpload, metrics.ResultOK)
	r.logger.InfoContext(ctx, "media stored",
		slog.String("owner_id", ownerID),
		slog.String("owner_kind", string(kind)),
		slog.String("public_id", result.PublicID),
	)
	return nil
}

func (r *AssetReconciler) localContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), localWriteTimeout)
}

// asAssetStoreError keeps caller-facing kinds (bad source, bad key) and
// classifies everything else as an object store failure.
func asAssetStoreError(message string, err error) error {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return apierror.AssetStore(message, err)
}
