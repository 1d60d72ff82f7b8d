package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/internal/validate"
	"github.com/weiawesome/framez/pkg/jwt"
	pkglog "github.com/weiawesome/framez/pkg/log"
	"github.com/weiawesome/framez/pkg/pubsub"
)

// MinPasswordLength is the shortest password accepted at account creation.
const MinPasswordLength = 6

// Account is the provider's view of a user.
type Account struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// StateChange is a sign-in or sign-out of an account.
type StateChange struct {
	AccountID string
	SignedIn  bool
	At        time.Time
}

// Provider owns credentials and sessions.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (*Account, error)
	SetDisplayName(ctx context.Context, accountID, name string) error
	Authenticate(ctx context.Context, email, password string) (*Account, error)
	IssueSession(ctx context.Context, account *Account) (*jwt.TokenPair, error)
	RefreshSession(ctx context.Context, refreshToken string) (*jwt.TokenPair, *Account, error)
	SignOut(ctx context.Context, accountID string) error
	Observe(ctx context.Context, accountID string) (<-chan StateChange, error)
}

// GormProvider keeps accounts in the accounts table, hashes passwords
// with bcrypt, issues JWT sessions and announces state changes on the
// auth-state pub/sub channel of each account.
type GormProvider struct {
	db       *gorm.DB
	tokens   *jwt.Manager
	bus      pubsub.PubSub
	hashCost int
}

// NewGormProvider creates a provider. hashCost 0 means bcrypt.DefaultCost.
func NewGormProvider(db *gorm.DB, tokens *jwt.Manager, bus pubsub.PubSub, hashCost int) *GormProvider {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &GormProvider{db: db, tokens: tokens, bus: bus, hashCost: hashCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount registers email with password.
func (p *GormProvider) CreateAccount(ctx context.Context, email, password string) (*Account, error) {
	email = normalizeEmail(email)
	if err := validate.Engine().Var(email, "required,email"); err != nil {
		return nil, newError(CodeInvalidEmail, err)
	}
	if len(password) < MinPasswordLength {
		return nil, newError(CodeWeakPassword, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.hashCost)
	if err != nil {
		return nil, newError(CodeUnknown, err)
	}

	model := &domain.AccountModel{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := p.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") ||
			strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "Duplicate entry") {
			return nil, newError(CodeEmailAlreadyInUse, err)
		}
		return nil, storeError(err)
	}

	return toAccount(model), nil
}

// SetDisplayName updates the account's display name.
func (p *GormProvider) SetDisplayName(ctx context.Context, accountID, name string) error {
	result := p.db.WithContext(ctx).Model(&domain.AccountModel{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{"display_name": name, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return storeError(result.Error)
	}
	if result.RowsAffected == 0 {
		return newError(CodeUserNotFound, nil)
	}
	return nil
}

// Authenticate checks email and password.
func (p *GormProvider) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	email = normalizeEmail(email)
	if err := validate.Engine().Var(email, "required,email"); err != nil {
		return nil, newError(CodeInvalidEmail, err)
	}

	var model domain.AccountModel
	if err := p.db.WithContext(ctx).First(&model, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(CodeUserNotFound, err)
		}
		return nil, storeError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(model.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, newError(CodeWrongPassword, err)
		}
		return nil, newError(CodeInvalidCredential, err)
	}

	return toAccount(&model), nil
}

// IssueSession creates a token pair and announces the sign-in.
func (p *GormProvider) IssueSession(ctx context.Context, account *Account) (*jwt.TokenPair, error) {
	pair, err := p.tokens.GenerateTokenPair(account.ID, account.Email)
	if err != nil {
		return nil, newError(CodeUnknown, err)
	}
	p.announce(ctx, pubsub.EventSignedIn, account)
	return pair, nil
}

// RefreshSession exchanges a refresh token for a new pair.
func (p *GormProvider) RefreshSession(ctx context.Context, refreshToken string) (*jwt.TokenPair, *Account, error) {
	claims, err := p.tokens.ValidateToken(refreshToken)
	if err != nil || claims.Type != jwt.TypeRefresh {
		return nil, nil, newError(CodeInvalidCredential, err)
	}

	var model domain.AccountModel
	if err := p.db.WithContext(ctx).First(&model, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, newError(CodeUserNotFound, err)
		}
		return nil, nil, storeError(err)
	}

	pair, _, err := p.tokens.RefreshTokens(refreshToken, model.Email)
	if err != nil {
		return nil, nil, newError(CodeInvalidCredential, err)
	}
	return pair, toAccount(&model), nil
}

// SignOut revokes every session of the account and announces it.
func (p *GormProvider) SignOut(ctx context.Context, accountID string) error {
	p.tokens.RevokeUserTokens(accountID)
	p.announce(ctx, pubsub.EventSignedOut, &Account{ID: accountID})
	return nil
}

// Observe streams state changes of accountID until ctx ends.
func (p *GormProvider) Observe(ctx context.Context, accountID string) (<-chan StateChange, error) {
	events, err := p.bus.Subscribe(ctx, pubsub.AuthStateChannel(accountID))
	if err != nil {
		return nil, newError(CodeNetworkRequestFailed, err)
	}

	out := make(chan StateChange)
	go func() {
		defer close(out)
		for evt := range events {
			change := StateChange{
				AccountID: accountID,
				SignedIn:  evt.Type == pubsub.EventSignedIn,
				At:        evt.Timestamp,
			}
			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// announce publishes a state change. Delivery is best-effort.
func (p *GormProvider) announce(ctx context.Context, eventType string, account *Account) {
	l := pkglog.Ctx(ctx)

	evt, err := pubsub.NewEvent(eventType, account.ID, pubsub.AuthStatePayload{
		UserID: account.ID,
		Email:  account.Email,
	})
	if err != nil {
		l.Warn().Err(err).Msg("failed to build auth state event")
		return
	}
	if err := p.bus.Publish(ctx, pubsub.AuthStateChannel(account.ID), evt); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldUserID, account.ID).Str("event", eventType).Msg("failed to publish auth state")
	}
}

func toAccount(m *domain.AccountModel) *Account {
	return &Account{
		ID:          m.ID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		CreatedAt:   m.CreatedAt,
	}
}

var _ Provider = (*GormProvider)(nil)
