package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/logger"
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID int64
	Role   models.Role
}

// IsStaff reports admin or super_admin
func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

// CanModify reports whether the actor may edit or delete a record owned by ownerID
func (a Actor) CanModify(ownerID int64) bool {
	return a.UserID == ownerID || a.IsStaff()
}

// RequireRole fails with a permission error unless the actor has at least min
func (a Actor) RequireRole(min models.Role) error {
	if !a.Role.AtLeast(min) {
		return apperrors.NewForbiddenError(fmt.Sprintf("%s role required", min))
	}
	return nil
}

// CanAssignRole checks the role assignment rules. superAdmins is the current
// number of super admins and is only consulted when a super admin is demoted.
//
//   - nobody changes their own role
//   - admins may only grant viewer or member, and only to non-staff users
//   - super admins may grant any role
//   - the last super admin cannot be demoted
func CanAssignRole(actor Actor, targetID int64, current, next models.Role, superAdmins int64) error {
	if !next.Valid() {
		return apperrors.NewBadRequestError("unknown role")
	}
	if actor.UserID == targetID {
		return apperrors.NewForbiddenError("you cannot change your own role")
	}

	switch actor.Role {
	case models.RoleSuperAdmin:
	case models.RoleAdmin:
		if current.IsStaff() {
			return apperrors.NewForbiddenError("admins cannot change the role of other admins")
		}
		if next.IsStaff() {
			return apperrors.NewForbiddenError("admins can only assign viewer or member")
		}
	default:
		return apperrors.NewForbiddenError("admin role required")
	}

	if current == models.RoleSuperAdmin && next != models.RoleSuperAdmin && superAdmins <= 1 {
		return apperrors.NewConflictError("the last super admin cannot be demoted")
	}
	return nil
}

// CanChangeStatus checks who may activate or disable an account
func CanChangeStatus(actor Actor, targetID int64, targetRole models.Role) error {
	if actor.UserID == targetID {
		return apperrors.NewForbiddenError("you cannot change your own account status")
	}
	if !actor.IsStaff() {
		return apperrors.NewForbiddenError("admin role required")
	}
	if targetRole.IsStaff() && actor.Role != models.RoleSuperAdmin {
		return apperrors.NewForbiddenError("only a super admin can change the status of staff accounts")
	}
	return nil
}

// AccessReader reads the role and active flag of an account
type AccessReader interface {
	GetAccess(ctx context.Context, userID int64) (models.Role, bool, error)
}

// AuthorizationService resolves the live role of a user
type AuthorizationService struct {
	users AccessReader
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(users AccessReader) *AuthorizationService {
	return &AuthorizationService{users: users}
}

// CurrentRole re-reads the role of userID. Token claims may be stale after a
// role change, and a disabled account yields ErrAccountDisabled.
func (s *AuthorizationService) CurrentRole(ctx context.Context, userID int64) (models.Role, error) {
	role, active, err := s.users.GetAccess(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			logger.Error().Err(err).Int64("userID", userID).Msg("Error resolving current role")
		}
		return "", err
	}
	if !active {
		return "", apperrors.ErrAccountDisabled
	}
	return role, nil
}

// ActorFor builds an Actor carrying the live role
func (s *AuthorizationService) ActorFor(ctx context.Context, userID int64) (Actor, error) {
	role, err := s.CurrentRole(ctx, userID)
	if err != nil {
		return Actor{}, err
	}
	return Actor{UserID: userID, Role: role}, nil
}
