package models

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User represents an account allowed to modify the recipe collection.
type User struct {
	Model
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser builds an account with a normalized email, a trimmed name and a
// bcrypt hash of password. It does not persist the user.
func NewUser(email, name, password string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hashed),
	}, nil
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Unit{},
		&Tag{},
		&Ingredient{},
		&Category{},
		&Recipe{},
		&IngredientItem{},
	}
}
