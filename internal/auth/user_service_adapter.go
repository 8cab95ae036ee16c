package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UserServiceAdapter exposes user contact lookups to the schedules and
// bookings packages without giving them the full auth repository. It
// satisfies their local UserService interfaces.
type UserServiceAdapter struct {
	repo Repository
}

func NewUserServiceAdapter(repo Repository) *UserServiceAdapter {
	return &UserServiceAdapter{
		repo: repo,
	}
}

// GetUserByID fetches a user's email and display name.
func (usa *UserServiceAdapter) GetUserByID(ctx context.Context, userID uuid.UUID) (email, name string, err error) {
	user, err := usa.repo.GetUserByID(ctx, userID.String())
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}
	return user.Email, user.FullName, nil
}
