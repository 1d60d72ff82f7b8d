package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on a GORM connection.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository       { return NewGormUserRepository(s.db) }
func (s *GormStore) Posts() PostRepository       { return NewGormPostRepository(s.db) }
func (s *GormStore) Comments() CommentRepository { return NewGormCommentRepository(s.db) }

// Transaction runs fn with repositories bound to a single transaction.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

var _ Store = (*GormStore)(nil)

// forUpdate adds SELECT ... FOR UPDATE. Dialects without row locks (SQLite)
// drop the clause.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// isUniqueViolation reports whether err is a unique-constraint violation.
// TranslateError maps most drivers to gorm.ErrDuplicatedKey; the string
// checks cover drivers that do not translate.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "Duplicate entry")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
