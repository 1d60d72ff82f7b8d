package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/pkg/database"
)

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-based post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// Create inserts a post with an empty like set.
func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Timestamp.IsZero() {
		post.Timestamp = time.Now().UTC()
	}

	model := domain.PostToModel(post)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	post.Likes = model.Likes
	return nil
}

// GetByID retrieves a post by ID.
func (r *GormPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetByIDForUpdate retrieves a post and locks its row.
func (r *GormPostRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Post, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormPostRepository) get(db *gorm.DB, id string) (*domain.Post, error) {
	var model domain.PostModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns posts newest-first.
func (r *GormPostRepository) List(ctx context.Context, filter ListPostsFilter) ([]*domain.Post, error) {
	q := r.db.WithContext(ctx).Model(&domain.PostModel{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var models []domain.PostModel
	if err := q.Order("timestamp DESC").Order("id DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, 0, len(models))
	for i := range models {
		posts = append(posts, models[i].ToDomain())
	}
	return posts, nil
}

// SaveLikes overwrites the like set and its count. Callers hold the row
// lock from GetByIDForUpdate.
func (r *GormPostRepository) SaveLikes(ctx context.Context, id string, likes database.StringArray, count int) error {
	return r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"likes":       likes,
			"likes_count": count,
		}).Error
}

// IncrementCommentsCount adds delta to comments_count in one statement.
func (r *GormPostRepository) IncrementCommentsCount(ctx context.Context, id string, delta int) error {
	result := r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Where("id = ?", id).
		UpdateColumn("comments_count", gorm.Expr("comments_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// SetCommentsCount overwrites comments_count.
func (r *GormPostRepository) SetCommentsCount(ctx context.Context, id string, count int) error {
	return r.db.WithContext(ctx).Model(&domain.PostModel{}).
		Where("id = ?", id).
		UpdateColumn("comments_count", count).Error
}

// Delete removes a post. Comments are not touched.
func (r *GormPostRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.PostModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

var _ PostRepository = (*GormPostRepository)(nil)
