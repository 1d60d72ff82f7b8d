package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/pkg/database"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a profile. The ID is generated when empty; the identity
// provider normally supplies it.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.UserProfile) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	model := domain.UserToModel(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	}

	user.CreatedAt = model.CreatedAt
	user.Followers = model.Followers
	user.Following = model.Following
	return nil
}

// GetByID retrieves a profile by ID.
func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetByIDForUpdate retrieves a profile and locks its row.
func (r *GormUserRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.UserProfile, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormUserRepository) get(db *gorm.DB, id string) (*domain.UserProfile, error) {
	var model domain.UserModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateProfile writes only the fields present in req.
func (r *GormUserRepository) UpdateProfile(ctx context.Context, id string, req *domain.UpdateProfileRequest) error {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	return r.update(ctx, id, updates)
}

// UpdatePushToken stores the device push token; an empty token clears it.
func (r *GormUserRepository) UpdatePushToken(ctx context.Context, id, token string) error {
	var value interface{}
	if token != "" {
		value = token
	}
	return r.update(ctx, id, map[string]interface{}{
		"push_token": value,
		"updated_at": time.Now().UTC(),
	})
}

// SaveFollowers overwrites the followers set and its count.
func (r *GormUserRepository) SaveFollowers(ctx context.Context, id string, followers database.StringArray, count int) error {
	return r.update(ctx, id, map[string]interface{}{
		"followers":       followers,
		"followers_count": count,
		"updated_at":      time.Now().UTC(),
	})
}

// SaveFollowing overwrites the following set and its count.
func (r *GormUserRepository) SaveFollowing(ctx context.Context, id string, following database.StringArray, count int) error {
	return r.update(ctx, id, map[string]interface{}{
		"following":       following,
		"following_count": count,
		"updated_at":      time.Now().UTC(),
	})
}

// update always touches updated_at, so a matched row is always reported
// as affected, including on MySQL.
func (r *GormUserRepository) update(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

var _ UserRepository = (*GormUserRepository)(nil)
