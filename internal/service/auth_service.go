package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/weiawesome/framez/internal/audit"
	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/identity"
	"github.com/weiawesome/framez/internal/repository"
	"github.com/weiawesome/framez/internal/validate"
	"github.com/weiawesome/framez/pkg/database"
	"github.com/weiawesome/framez/pkg/jwt"
	pkglog "github.com/weiawesome/framez/pkg/log"
)

// authService implements AuthService on top of an identity provider and
// the profile documents it mirrors.
type authService struct {
	provider identity.Provider
	users    repository.UserRepository
	now      func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(provider identity.Provider, users repository.UserRepository) AuthService {
	return &authService{provider: provider, users: users, now: time.Now}
}

// Signup creates the account, names it and writes the matching profile.
func (s *authService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.AuthResponse, error) {
	l := pkglog.Ctx(ctx)

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, invalid(err)
	}

	account, err := s.provider.CreateAccount(ctx, req.Email, req.Password)
	if err != nil {
		l.Warn().Err(err).Str(pkglog.FieldEmail, req.Email).Msg("signup rejected by identity provider")
		return nil, err
	}

	if err := s.provider.SetDisplayName(ctx, account.ID, req.Name); err != nil {
		l.Error().Err(err).Str(pkglog.FieldUserID, account.ID).Msg("failed to set display name")
		return nil, err
	}

	user := &domain.UserProfile{
		ID:        account.ID,
		Email:     account.Email,
		Name:      req.Name,
		CreatedAt: s.now().UTC(),
		Followers: database.StringArray{},
		Following: database.StringArray{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		l.Error().Err(err).Str(pkglog.FieldUserID, account.ID).Msg("failed to create user profile")
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, &identity.Error{Code: identity.CodeEmailAlreadyInUse, Err: err}
		}
		return nil, writeFailed("create profile", err)
	}

	pair, err := s.provider.IssueSession(ctx, account)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldUserID, account.ID).Msg("failed to issue session after signup")
		return nil, err
	}

	audit.Log(ctx, audit.ActionSignup, user.ID, "user signed up")
	return authResponse(user, pair), nil
}

// Login authenticates and returns the stored profile.
func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	l := pkglog.Ctx(ctx)

	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, invalid(err)
	}

	account, err := s.provider.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		audit.LogWithDetail(ctx, audit.ActionLoginFailed, "", req.Email, "login failed: "+string(identity.CodeOf(err)))
		return nil, err
	}

	user, err := s.users.GetByID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			l.Warn().Str(pkglog.FieldUserID, account.ID).Msg("account has no profile")
			return nil, ErrNotFound
		}
		l.Error().Err(err).Str(pkglog.FieldUserID, account.ID).Msg("failed to load profile at login")
		return nil, err
	}

	pair, err := s.provider.IssueSession(ctx, account)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldUserID, account.ID).Msg("failed to issue session after login")
		return nil, err
	}

	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")
	return authResponse(user, pair), nil
}

// Refresh exchanges a refresh token for a new pair.
func (s *authService) Refresh(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error) {
	l := pkglog.Ctx(ctx)

	if err := validate.Struct(req); err != nil {
		return nil, invalid(err)
	}

	pair, account, err := s.provider.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		l.Warn().Err(err).Msg("failed to refresh session")
		return nil, err
	}

	user, err := s.users.GetByID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	audit.Log(ctx, audit.ActionRefreshToken, user.ID, "token refreshed")
	return authResponse(user, pair), nil
}

// Logout ends every session of userID.
func (s *authService) Logout(ctx context.Context, userID string) error {
	l := pkglog.Ctx(ctx)

	if err := s.provider.SignOut(ctx, userID); err != nil {
		l.Error().Err(err).Msg("failed to sign out")
		return err
	}

	audit.Log(ctx, audit.ActionLogout, userID, "user logged out")
	return nil
}

// CurrentUser returns the profile of the signed-in user.
func (s *authService) CurrentUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Msg("failed to load current user")
		return nil, err
	}
	return user, nil
}

// OnAuthStateChanged reports the caller as signed in, then relays every
// later transition. The channel closes when ctx ends.
func (s *authService) OnAuthStateChanged(ctx context.Context, userID string) (<-chan domain.AuthState, error) {
	ctx, cancel := context.WithCancel(ctx)
	changes, err := s.provider.Observe(ctx, userID)
	if err != nil {
		cancel()
		return nil, err
	}

	current, err := s.CurrentUser(ctx, userID)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan domain.AuthState, 1)
	out <- domain.AuthState{SignedIn: true, User: current, At: s.now().UTC()}

	go func() {
		defer close(out)
		defer cancel()
		l := pkglog.Ctx(ctx)
		for change := range changes {
			state := domain.AuthState{SignedIn: change.SignedIn, At: change.At}
			if change.SignedIn {
				user, err := s.users.GetByID(ctx, userID)
				if err != nil {
					l.Warn().Err(err).Msg("failed to load profile for auth state")
				} else {
					state.User = user
				}
			}
			select {
			case out <- state:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func authResponse(user *domain.UserProfile, pair *jwt.TokenPair) *domain.AuthResponse {
	return &domain.AuthResponse{
		User:             user,
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}
