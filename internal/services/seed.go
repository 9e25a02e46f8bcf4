package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/coffee-focus/coffeefocus/internal/auth"
	"github.com/coffee-focus/coffeefocus/internal/models"
)

type SeedOutcome string

const (
	SeedCreated SeedOutcome = "created"
	SeedUpdated SeedOutcome = "updated"
	SeedSkipped SeedOutcome = "skipped"
)

// SeedUser creates a credentials user. An existing user without a password
// gets one; an existing user with a password is left untouched.
func SeedUser(tx *gorm.DB, email, name, password string) (SeedOutcome, error) {
	if email == "" || password == "" {
		return "", errors.New("email and password are required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	var existing models.User
	err = tx.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if existing.PasswordHash != "" {
			return SeedSkipped, nil
		}
		if err := tx.Model(&existing).Update("password_hash", hash).Error; err != nil {
			return "", fmt.Errorf("update user: %w", err)
		}
		return SeedUpdated, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", err
	}

	user := models.User{Name: name, Email: &email, PasswordHash: hash}
	if err := tx.Create(&user).Error; err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	return SeedCreated, nil
}

type CredentialCheck struct {
	UserID        string
	HasPassword   bool
	PasswordValid bool
}

// CheckCredentials reports whether a user exists and whether the password
// matches. A nil result means no user has that email.
func CheckCredentials(tx *gorm.DB, email, password string) (*CredentialCheck, error) {
	var user models.User
	if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &CredentialCheck{
		UserID:        user.ID,
		HasPassword:   user.PasswordHash != "",
		PasswordValid: user.PasswordHash != "" && auth.CheckPassword(user.PasswordHash, password) == nil,
	}, nil
}
