package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"community-api/internal/credential"
	"community-api/internal/model"
	"community-api/pkg/apierror"
)

const mediaCleanupConcurrency = 4

type UserService struct {
	users    IdentityStore
	posts    PostStore
	slots    MediaStore
	network  NetworkStore
	media    Reconciler
	verifier *credential.Verifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewUserService(users IdentityStore, posts PostStore, slots MediaStore, network NetworkStore, media Reconciler, verifier *credential.Verifier, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:    users,
		posts:    posts,
		slots:    slots,
		network:  network,
		media:    media,
		verifier: verifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a USER identity. A duplicate e-mail is resolved by the
// unique index and surfaces as Conflict.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (model.Identity, error) {
	hash, err := s.verifier.Hash(req.Password)
	if err != nil {
		return model.Identity{}, apierror.Validation("password cannot be used", err.Error())
	}

	now := s.now()
	identity := model.Identity{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         cleanLine(req.Name),
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, identity); err != nil {
		return model.Identity{}, err
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", identity.ID))
	return identity, nil
}

// FindOne returns the public view of a user: no e-mail, role or hash.
func (s *UserService) FindOne(ctx context.Context, id string) (model.PublicProfile, error) {
	identity, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicProfile{}, err
	}

	posts, err := s.posts.ListPublicByUser(ctx, id)
	if err != nil {
		return model.PublicProfile{}, err
	}

	network, err := s.network.FindByUser(ctx, id)
	if err != nil {
		return model.PublicProfile{}, err
	}

	return model.PublicProfile{
		ID:           identity.ID,
		Name:         identity.Name,
		UserName:     identity.UserName,
		Biography:    identity.Biography,
		Location:     identity.Location,
		ProfileImage: identity.ProfileImage,
		Network:      network,
		CreatedAt:    identity.CreatedAt,
		Posts:        posts,
	}, nil
}

// Stats summarizes the caller's posts and the engagement they received.
func (s *UserService) Stats(ctx context.Context, principal model.Principal) (model.UserStats, error) {
	if _, err := s.users.FindByID(ctx, principal.ID); err != nil {
		return model.UserStats{}, err
	}
	return s.posts.StatsForUser(ctx, principal.ID)
}

// Update applies a self-service patch. Role is never patchable here.
func (s *UserService) Update(ctx context.Context, principal model.Principal, req model.UpdateUserRequest) (model.Identity, error) {
	patch := model.IdentityPatch{
		Name:         cleanedLine(req.Name),
		UserName:     cleanedLine(req.UserName),
		Biography:    cleanedBlock(req.Biography),
		Location:     cleanedLine(req.Location),
		ProfileImage: model.MediaFromField(req.ProfileImage),
		Network:      req.Network.Patch(),
	}

	if req.Password != nil {
		hash, err := s.verifier.Hash(*req.Password)
		if err != nil {
			return model.Identity{}, apierror.Validation("password cannot be used", err.Error())
		}
		patch.PasswordHash = &hash
	}

	if patch.HasColumns() {
		if err := s.users.Update(ctx, principal.ID, patch, s.now()); err != nil {
			return model.Identity{}, err
		}
	} else if _, err := s.users.FindByID(ctx, principal.ID); err != nil {
		return model.Identity{}, err
	}

	if !patch.Network.Empty() {
		if err := s.mergeNetwork(ctx, principal.ID, patch.Network); err != nil {
			return model.Identity{}, err
		}
	}

	if err := s.media.Reconcile(ctx, principal.ID, model.OwnerUserProfile, patch.ProfileImage); err != nil {
		return model.Identity{}, err
	}

	identity, err := s.users.FindByID(ctx, principal.ID)
	if err != nil {
		return model.Identity{}, err
	}
	if identity.Network, err = s.network.FindByUser(ctx, principal.ID); err != nil {
		return model.Identity{}, err
	}
	return identity, nil
}

func (s *UserService) mergeNetwork(ctx context.Context, userID string, patch model.NetworkPatch) error {
	current, err := s.network.FindByUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.network.Upsert(ctx, userID, patch.Apply(current), s.now())
}

// Delete removes every media object the user owns, directly or through
// posts, before the identity row. Posts and slots cascade in SQL.
func (s *UserService) Delete(ctx context.Context, principal model.Principal) error {
	if _, err := s.users.FindByID(ctx, principal.ID); err != nil {
		return err
	}

	slots, err := s.slots.ListOwnedByUser(ctx, principal.ID)
	if err != nil {
		return err
	}

	// A failed sibling must not cancel removals already in flight.
	var g errgroup.Group
	g.SetLimit(mediaCleanupConcurrency)
	for _, slot := range slots {
		slot := slot
		g.Go(func() error {
			return s.media.Reconcile(ctx, slot.OwnerID, slot.OwnerKind, model.MediaValue(""))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, principal.ID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", principal.ID),
		slog.Int("media_removed", len(slots)),
	)
	return nil
}
