package domain

import (
	"time"

	"github.com/weiawesome/framez/pkg/database"
)

// UserModel is the GORM model for the users table. Set columns hold user
// ids; the counts are denormalized and repaired by the reconciler.
type UserModel struct {
	ID             string               `gorm:"type:varchar(36);primaryKey"`
	Email          string               `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name           string               `gorm:"type:varchar(100);not null"`
	Avatar         *string              `gorm:"type:varchar(1024)"`
	Bio            *string              `gorm:"type:varchar(500)"`
	Followers      database.StringArray `gorm:"type:text"`
	Following      database.StringArray `gorm:"type:text"`
	FollowersCount int                  `gorm:"not null;default:0"`
	FollowingCount int                  `gorm:"not null;default:0"`
	PushToken      *string              `gorm:"type:varchar(255)"`
	CreatedAt      time.Time            `gorm:"autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

// ToDomain converts UserModel to a UserProfile snapshot.
func (m *UserModel) ToDomain() *UserProfile {
	return &UserProfile{
		ID:             m.ID,
		Email:          m.Email,
		Name:           m.Name,
		Avatar:         m.Avatar,
		Bio:            m.Bio,
		CreatedAt:      m.CreatedAt,
		Followers:      nonNil(m.Followers),
		Following:      nonNil(m.Following),
		FollowersCount: m.FollowersCount,
		FollowingCount: m.FollowingCount,
		PushToken:      m.PushToken,
	}
}

// UserToModel converts a UserProfile to its row.
func UserToModel(u *UserProfile) *UserModel {
	return &UserModel{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Avatar:         u.Avatar,
		Bio:            u.Bio,
		Followers:      nonNil(u.Followers),
		Following:      nonNil(u.Following),
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		PushToken:      u.PushToken,
		CreatedAt:      u.CreatedAt,
	}
}

// UserProfile is a user's public profile document.
type UserProfile struct {
	ID             string               `json:"id"`
	Email          string               `json:"email"`
	Name           string               `json:"name"`
	Avatar         *string              `json:"avatar"`
	Bio            *string              `json:"bio,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	Followers      database.StringArray `json:"followers"`
	Following      database.StringArray `json:"following"`
	FollowersCount int                  `json:"followers_count"`
	FollowingCount int                  `json:"following_count"`
	PushToken      *string              `json:"-"`
}

// Author is the trimmed snapshot embedded in posts and comments.
func (u *UserProfile) Author() *Author {
	return &Author{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

// Author is a denormalized, possibly stale copy of a profile taken at
// read time.
type Author struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

// UpdateProfileRequest carries the fields to change; nil fields are left
// untouched.
type UpdateProfileRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=100"`
	Bio    *string `json:"bio" binding:"omitempty,max=500"`
	Avatar *string `json:"avatar" binding:"omitempty,max=1024"`
}

// Empty reports whether no field is set.
func (r *UpdateProfileRequest) Empty() bool {
	return r.Name == nil && r.Bio == nil && r.Avatar == nil
}

func nonNil(a database.StringArray) database.StringArray {
	if a == nil {
		return database.StringArray{}
	}
	return a
}

// Models lists every table owned by the service, for migrations.
func Models() []interface{} {
	return []interface{}{
		&AccountModel{},
		&UserModel{},
		&PostModel{},
		&CommentModel{},
	}
}
