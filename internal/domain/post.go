package domain

import (
	"time"

	"github.com/weiawesome/framez/pkg/database"
)

// MaxPostContent is the longest post body accepted, in characters.
const MaxPostContent = 500

// PostModel is the GORM model for the posts table.
type PostModel struct {
	ID            string               `gorm:"type:varchar(36);primaryKey"`
	UserID        string               `gorm:"column:user_id;type:varchar(36);index;not null"`
	Content       string               `gorm:"type:text;not null"`
	ImageURL      *string              `gorm:"column:image_url;type:varchar(1024)"`
	Timestamp     time.Time            `gorm:"column:timestamp;index;not null"`
	Likes         database.StringArray `gorm:"type:text"`
	LikesCount    int                  `gorm:"column:likes_count;not null;default:0"`
	CommentsCount int                  `gorm:"column:comments_count;not null;default:0"`
}

func (PostModel) TableName() string { return "posts" }

// ToDomain converts PostModel to a Post without an author.
func (m *PostModel) ToDomain() *Post {
	return &Post{
		ID:            m.ID,
		UserID:        m.UserID,
		Content:       m.Content,
		ImageURL:      m.ImageURL,
		Timestamp:     m.Timestamp,
		Likes:         nonNil(m.Likes),
		LikesCount:    m.LikesCount,
		CommentsCount: m.CommentsCount,
	}
}

// PostToModel converts a Post to its row. Author is never stored.
func PostToModel(p *Post) *PostModel {
	return &PostModel{
		ID:            p.ID,
		UserID:        p.UserID,
		Content:       p.Content,
		ImageURL:      p.ImageURL,
		Timestamp:     p.Timestamp,
		Likes:         nonNil(p.Likes),
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
	}
}

// Post is a user post with its like set and counters.
type Post struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	Content       string               `json:"content"`
	ImageURL      *string              `json:"image_url,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
	Likes         database.StringArray `json:"likes"`
	LikesCount    int                  `json:"likes_count"`
	CommentsCount int                  `json:"comments_count"`
	Author        *Author              `json:"author,omitempty"`
}

// CreatePostRequest is the input to post creation.
type CreatePostRequest struct {
	Content  string  `json:"content" form:"content" binding:"required,max=500"`
	ImageURL *string `json:"image_url" form:"image_url" binding:"omitempty,max=1024"`
}
