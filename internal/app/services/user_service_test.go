package services

import (
	"context"
	"testing"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService(users *mockUserRepo, tokens *mockTokenRepo, notifier *fakeNotifier) *UserService {
	return NewUserService(users, tokens, nil, nil, nil, notifier, zerolog.Nop())
}

func TestUserService_SetRole(t *testing.T) {
	ctx := context.Background()
	superAdmin := appauth.Actor{UserID: 1, Role: models.RoleSuperAdmin}
	admin := appauth.Actor{UserID: 2, Role: models.RoleAdmin}

	t.Run("admin promotes viewer to member", func(t *testing.T) {
		users, notifier := new(mockUserRepo), &fakeNotifier{}
		users.On("GetRole", ctx, int64(9)).Return(models.RoleViewer, nil)
		users.On("SetRole", ctx, int64(9), models.RoleMember, admin.UserID).Return(nil)

		require.NoError(t, newTestUserService(users, nil, notifier).SetRole(ctx, admin, 9, models.RoleMember))
		users.AssertExpectations(t)
		require.Equal(t, 1, notifier.count())
		assert.Equal(t, models.NotificationRoleChanged, notifier.sent[0].Type)
		assert.Equal(t, int64(9), notifier.sent[0].UserID)
	})

	t.Run("admin cannot grant admin", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetRole", ctx, int64(9)).Return(models.RoleMember, nil)

		err := newTestUserService(users, nil, &fakeNotifier{}).SetRole(ctx, admin, 9, models.RoleAdmin)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("same role is a no-op", func(t *testing.T) {
		users, notifier := new(mockUserRepo), &fakeNotifier{}
		users.On("GetRole", ctx, int64(9)).Return(models.RoleMember, nil)

		require.NoError(t, newTestUserService(users, nil, notifier).SetRole(ctx, superAdmin, 9, models.RoleMember))
		assert.Zero(t, notifier.count())
	})

	t.Run("super admin demotes another super admin", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetRole", ctx, int64(3)).Return(models.RoleSuperAdmin, nil)
		users.On("CountByRole", ctx, models.RoleSuperAdmin).Return(int64(2), nil)
		users.On("SetRole", ctx, int64(3), models.RoleAdmin, superAdmin.UserID).Return(nil)

		require.NoError(t, newTestUserService(users, nil, &fakeNotifier{}).SetRole(ctx, superAdmin, 3, models.RoleAdmin))
		users.AssertExpectations(t)
	})

	t.Run("last super admin stays", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetRole", ctx, int64(3)).Return(models.RoleSuperAdmin, nil)
		users.On("CountByRole", ctx, models.RoleSuperAdmin).Return(int64(1), nil)

		err := newTestUserService(users, nil, &fakeNotifier{}).SetRole(ctx, superAdmin, 3, models.RoleAdmin)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestUserService_SetStatus(t *testing.T) {
	ctx := context.Background()
	admin := appauth.Actor{UserID: 2, Role: models.RoleAdmin}

	t.Run("disabling revokes sessions", func(t *testing.T) {
		users, tokens := new(mockUserRepo), new(mockTokenRepo)
		users.On("GetRole", ctx, int64(9)).Return(models.RoleMember, nil)
		users.On("SetActive", ctx, int64(9), false).Return(nil)
		tokens.On("RevokeAllUserTokens", ctx, int64(9)).Return(nil)

		require.NoError(t, newTestUserService(users, tokens, &fakeNotifier{}).SetStatus(ctx, admin, 9, false))
		tokens.AssertExpectations(t)
	})

	t.Run("admin cannot disable admin", func(t *testing.T) {
		users := new(mockUserRepo)
		users.On("GetRole", ctx, int64(4)).Return(models.RoleAdmin, nil)

		err := newTestUserService(users, nil, &fakeNotifier{}).SetStatus(ctx, admin, 4, false)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}
