package domain

import "time"

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	PostID    string    `gorm:"column:post_id;type:varchar(36);index;not null"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null"`
	Content   string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"column:timestamp;index;not null"`
}

func (CommentModel) TableName() string { return "comments" }

func (m *CommentModel) ToDomain() *Comment {
	return &Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		UserID:    m.UserID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

func CommentToModel(c *Comment) *CommentModel {
	return &CommentModel{
		ID:        c.ID,
		PostID:    c.PostID,
		UserID:    c.UserID,
		Content:   c.Content,
		Timestamp: c.Timestamp,
	}
}

// Comment is a comment on a post. Comments are never edited.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Author    *Author   `json:"author,omitempty"`
}

// CreateCommentRequest is the input to comment creation.
type CreateCommentRequest struct {
	PostID  string `json:"-"`
	Content string `json:"content" binding:"required,max=1000"`
}
