package seed

import (
	"context"
	"testing"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockStore) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) CreateAccount(ctx context.Context, user *models.User, profile *models.Profile, role models.Role) error {
	return m.Called(ctx, user, profile, role).Error(0)
}

func (m *mockStore) GetRole(ctx context.Context, userID int64) (models.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Role), args.Error(1)
}

func (m *mockStore) SetRole(ctx context.Context, userID int64, role models.Role, assignedBy int64) error {
	return m.Called(ctx, userID, role, assignedBy).Error(0)
}

func TestEnsureSuperAdmin(t *testing.T) {
	ctx := context.Background()
	const email = "root@parivartan.app"

	t.Run("no email configured", func(t *testing.T) {
		store := new(mockStore)
		require.NoError(t, EnsureSuperAdmin(ctx, store, "", "", zerolog.Nop()))
		store.AssertNotCalled(t, "EmailExists", mock.Anything, mock.Anything)
	})

	t.Run("creates a verified super admin", func(t *testing.T) {
		store := new(mockStore)
		store.On("EmailExists", ctx, email).Return(false, nil)
		store.On("CreateAccount", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == email && u.IsActive && u.EmailVerified && auth.CheckPassword(u.PasswordHash, "Sup3rSecret")
		}), mock.AnythingOfType("*models.Profile"), models.RoleSuperAdmin).Return(nil)

		require.NoError(t, EnsureSuperAdmin(ctx, store, email, "Sup3rSecret", zerolog.Nop()))
		store.AssertExpectations(t)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		store := new(mockStore)
		store.On("EmailExists", ctx, email).Return(false, nil)

		err := EnsureSuperAdmin(ctx, store, email, "short", zerolog.Nop())
		assert.Error(t, err)
		store.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("existing super admin is left alone", func(t *testing.T) {
		store := new(mockStore)
		store.On("EmailExists", ctx, email).Return(true, nil)
		store.On("GetByEmail", ctx, email).Return(&models.User{ID: 3, Email: email}, nil)
		store.On("GetRole", ctx, int64(3)).Return(models.RoleSuperAdmin, nil)

		require.NoError(t, EnsureSuperAdmin(ctx, store, email, "Sup3rSecret", zerolog.Nop()))
		store.AssertNotCalled(t, "SetRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("existing member is promoted", func(t *testing.T) {
		store := new(mockStore)
		store.On("EmailExists", ctx, email).Return(true, nil)
		store.On("GetByEmail", ctx, email).Return(&models.User{ID: 3, Email: email}, nil)
		store.On("GetRole", ctx, int64(3)).Return(models.RoleMember, nil)
		store.On("SetRole", ctx, int64(3), models.RoleSuperAdmin, int64(3)).Return(nil)

		require.NoError(t, EnsureSuperAdmin(ctx, store, email, "Sup3rSecret", zerolog.Nop()))
		store.AssertExpectations(t)
	})
}
