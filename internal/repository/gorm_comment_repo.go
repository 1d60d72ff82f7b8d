package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/weiawesome/framez/internal/domain"
)

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GORM-based comment repository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.Timestamp.IsZero() {
		comment.Timestamp = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(domain.CommentToModel(comment)).Error
}

func (r *GormCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var model domain.CommentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormCommentRepository) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	var models []domain.CommentModel
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("timestamp DESC").Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	comments := make([]*domain.Comment, 0, len(models))
	for i := range models {
		comments = append(comments, models[i].ToDomain())
	}
	return comments, nil
}

func (r *GormCommentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CommentModel{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// DeleteByPost removes every comment of a post and reports how many.
func (r *GormCommentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&domain.CommentModel{})
	return result.RowsAffected, result.Error
}

var _ CommentRepository = (*GormCommentRepository)(nil)
