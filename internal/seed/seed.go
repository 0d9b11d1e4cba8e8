package seed

import (
	"context"
	"fmt"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// AccountStore is the part of the user repository the seed needs
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateAccount(ctx context.Context, user *models.User, profile *models.Profile, role models.Role) error
	GetRole(ctx context.Context, userID int64) (models.Role, error)
	SetRole(ctx context.Context, userID int64, role models.Role, assignedBy int64) error
}

// EnsureSuperAdmin creates the configured super admin on first start, or promotes the
// account if it already exists with a lower role. Without an email nothing is seeded.
func EnsureSuperAdmin(ctx context.Context, store AccountStore, email, password string, lgr zerolog.Logger) error {
	if email == "" {
		lgr.Info().Msg("No super admin email configured, skipping seed")
		return nil
	}

	exists, err := store.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("error checking super admin: %w", err)
	}

	if exists {
		user, err := store.GetByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("error loading super admin: %w", err)
		}
		role, err := store.GetRole(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("error loading super admin role: %w", err)
		}
		if role == models.RoleSuperAdmin {
			lgr.Info().Msg("Super admin already exists, skipping creation")
			return nil
		}
		if err := store.SetRole(ctx, user.ID, models.RoleSuperAdmin, user.ID); err != nil {
			return fmt.Errorf("error promoting super admin: %w", err)
		}
		lgr.Info().Int64("userID", user.ID).Msg("Existing account promoted to super admin")
		return nil
	}

	if len(password) < 8 {
		return fmt.Errorf("super admin password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing super admin password: %w", err)
	}

	user := &models.User{
		Email:         email,
		PasswordHash:  hash,
		IsActive:      true,
		EmailVerified: true,
	}
	profile := &models.Profile{
		Username: "superadmin",
		FullName: "Super Admin",
	}
	if err := store.CreateAccount(ctx, user, profile, models.RoleSuperAdmin); err != nil {
		return fmt.Errorf("error creating super admin: %w", err)
	}

	lgr.Info().Int64("userID", user.ID).Msg("Super admin created")
	return nil
}
