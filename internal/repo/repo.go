package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNameTaken          = errors.New("name already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateReview    = errors.New("product already reviewed")
	ErrEmptyCart          = errors.New("no items in cart")
)

type Repo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Repo {
	return &Repo{DB: db}
}

// isUniqueViolation recognizes the unique-index error from both the postgres
// driver (SQLSTATE 23505) and the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "UNIQUE constraint")
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
