package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewFromCreateInput builds a record ready for persistence. Role and status
// fall back to USER and ACTIVE.
func NewFromCreateInput(in CreateUserInput, passwordHash string) User {
	now := time.Now().UTC()

	role := RoleUser
	if in.Role != nil {
		role = *in.Role
	}

	status := StatusActive
	if in.Status != nil {
		status = *in.Status
	}

	return User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        NormalizeEmail(in.Email),
		PasswordHash: passwordHash,
		Role:         role,
		Status:       status,
		ProfilePhoto: in.ProfilePhoto,
		Location:     in.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail is applied before every lookup and write so that uniqueness
// does not depend on letter case.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
