package services

import (
	"context"
	"testing"
	"time"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPopupRepo struct{ mock.Mock }

func (m *mockPopupRepo) Create(ctx context.Context, p *models.Popup) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPopupRepo) GetByID(ctx context.Context, id int64) (*models.Popup, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Popup)
	return p, args.Error(1)
}

func (m *mockPopupRepo) Update(ctx context.Context, p *models.Popup) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPopupRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPopupRepo) ListAll(ctx context.Context) ([]*models.Popup, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]*models.Popup)
	return p, args.Error(1)
}

func (m *mockPopupRepo) ListLiveNotViewed(ctx context.Context, userID int64, now time.Time) ([]*models.Popup, error) {
	args := m.Called(ctx, userID, now)
	p, _ := args.Get(0).([]*models.Popup)
	return p, args.Error(1)
}

func (m *mockPopupRepo) RecordView(ctx context.Context, popupID, userID int64) error {
	return m.Called(ctx, popupID, userID).Error(0)
}

func TestPopupActive(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	candidates := []*models.Popup{
		{ID: 1, Audience: models.PopupAudienceAll, IsActive: true},
		{ID: 2, Audience: models.PopupAudienceMembers, IsActive: true},
		{ID: 3, Audience: models.PopupAudienceAll, IsActive: true, StartsAt: &later},
	}

	tests := []struct {
		name string
		role models.Role
		want []int64
	}{
		{name: "viewer", role: models.RoleViewer, want: []int64{1}},
		{name: "member", role: models.RoleMember, want: []int64{1, 2}},
		{name: "admin", role: models.RoleAdmin, want: []int64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockPopupRepo)
			repo.On("ListLiveNotViewed", ctx, int64(11), now).Return(candidates, nil)
			s := NewPopupService(repo, zerolog.Nop())
			s.now = func() time.Time { return now }

			popups, err := s.Active(ctx, appauth.Actor{UserID: 11, Role: tt.role})
			require.NoError(t, err)
			ids := make([]int64, 0, len(popups))
			for _, p := range popups {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestPopupCreate(t *testing.T) {
	ctx := context.Background()
	admin := appauth.Actor{UserID: 1, Role: models.RoleAdmin}
	start := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(-time.Minute)

	t.Run("window must be ordered", func(t *testing.T) {
		s := NewPopupService(new(mockPopupRepo), zerolog.Nop())
		_, err := s.Create(ctx, admin, &dto.PopupRequest{Title: "Hi", Content: "x", StartsAt: &start, EndsAt: &end})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("defaults", func(t *testing.T) {
		repo := new(mockPopupRepo)
		repo.On("Create", ctx, mock.AnythingOfType("*models.Popup")).Return(nil)

		p, err := NewPopupService(repo, zerolog.Nop()).Create(ctx, admin, &dto.PopupRequest{Title: "Hi", Content: "x"})
		require.NoError(t, err)
		assert.Equal(t, models.PopupAudienceAll, p.Audience)
		assert.True(t, p.IsActive)
		require.NotNil(t, p.CreatedBy)
		assert.Equal(t, admin.UserID, *p.CreatedBy)
	})

	t.Run("update keeps active flag when omitted", func(t *testing.T) {
		repo := new(mockPopupRepo)
		repo.On("GetByID", ctx, int64(4)).Return(&models.Popup{ID: 4, IsActive: false}, nil)
		repo.On("Update", ctx, mock.AnythingOfType("*models.Popup")).Return(nil)

		p, err := NewPopupService(repo, zerolog.Nop()).Update(ctx, 4, &dto.PopupRequest{Title: "Hi", Content: "x"})
		require.NoError(t, err)
		assert.False(t, p.IsActive)
	})
}
