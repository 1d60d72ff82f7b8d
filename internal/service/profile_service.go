package service

import (
	"context"
	"errors"
	"strings"

	"github.com/weiawesome/framez/internal/audit"
	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/repository"
	"github.com/weiawesome/framez/internal/store"
	"github.com/weiawesome/framez/internal/validate"
	pkglog "github.com/weiawesome/framez/pkg/log"
)

// profileService implements ProfileService.
type profileService struct {
	users   repository.UserRepository
	authors *AuthorResolver
	hotKeys store.HotKeyStore
}

// NewProfileService creates a ProfileService. hotKeys may be nil.
func NewProfileService(users repository.UserRepository, authors *AuthorResolver, hotKeys store.HotKeyStore) ProfileService {
	if hotKeys == nil {
		hotKeys = store.NopHotKeyStore{}
	}
	return &profileService{users: users, authors: authors, hotKeys: hotKeys}
}

// GetUser returns the profile of userID.
func (s *profileService) GetUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	l := pkglog.Ctx(ctx)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		l.Error().Err(err).Str(pkglog.FieldTargetUserID, userID).Msg("failed to get user")
		return nil, err
	}

	if err := s.hotKeys.RecordAccess(ctx, store.KindUser, userID); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldTargetUserID, userID).Msg("failed to record hot key access")
	}
	return user, nil
}

// UpdateProfile writes only the supplied fields.
func (s *profileService) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	l := pkglog.Ctx(ctx)

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := validate.Struct(req); err != nil {
		return nil, invalid(err)
	}
	if req.Empty() {
		return s.GetUser(ctx, userID)
	}

	if err := s.users.UpdateProfile(ctx, userID, req); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		l.Error().Err(err).Msg("failed to update profile")
		return nil, writeFailed("update profile", err)
	}

	if err := s.authors.Invalidate(ctx, userID); err != nil {
		l.Warn().Err(err).Msg("failed to invalidate cached author")
	}
	audit.Log(ctx, audit.ActionUpdateProfile, userID, "profile updated")

	return s.GetUser(ctx, userID)
}

// UpdatePushToken stores the device push token. Failures are logged only.
func (s *profileService) UpdatePushToken(ctx context.Context, userID, token string) {
	if err := s.users.UpdatePushToken(ctx, userID, token); err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Msg("failed to update push token")
	}
}
