package services

import (
	"context"
	"testing"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTaskUpdateStatus(t *testing.T) {
	ctx := context.Background()
	assignee := appauth.Actor{UserID: 40, Role: models.RoleMember}

	tests := []struct {
		name    string
		actor   appauth.Actor
		allowed bool
	}{
		{"assignee", assignee, true},
		{"admin", appauth.Actor{UserID: 1, Role: models.RoleAdmin}, true},
		{"super admin", appauth.Actor{UserID: 2, Role: models.RoleSuperAdmin}, true},
		{"other member", appauth.Actor{UserID: 41, Role: models.RoleMember}, false},
		{"viewer", appauth.Actor{UserID: 42, Role: models.RoleViewer}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := new(mockTaskRepo)
			tasks.On("GetByID", ctx, int64(60)).Return(&models.Task{ID: 60, AssigneeID: assignee.UserID, Status: models.TaskTodo}, nil)
			tasks.On("UpdateStatus", ctx, int64(60), models.TaskInProgress).Return(nil)

			task, err := NewTaskService(tasks, &fakeNotifier{}, zerolog.Nop()).UpdateStatus(ctx, tt.actor, 60, models.TaskInProgress)
			if !tt.allowed {
				assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
				tasks.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.TaskInProgress, task.Status)
			tasks.AssertCalled(t, "UpdateStatus", ctx, int64(60), models.TaskInProgress)
		})
	}

	t.Run("same status is a no-op", func(t *testing.T) {
		tasks := new(mockTaskRepo)
		tasks.On("GetByID", ctx, int64(60)).Return(&models.Task{ID: 60, AssigneeID: assignee.UserID, Status: models.TaskDone}, nil)

		task, err := NewTaskService(tasks, &fakeNotifier{}, zerolog.Nop()).UpdateStatus(ctx, assignee, 60, models.TaskDone)
		require.NoError(t, err)
		assert.Equal(t, models.TaskDone, task.Status)
		tasks.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTaskCreateNotifiesAssignee(t *testing.T) {
	ctx := context.Background()
	admin := appauth.Actor{UserID: 1, Role: models.RoleAdmin}
	tasks := new(mockTaskRepo)
	notifier := &fakeNotifier{}
	tasks.On("Create", ctx, mock.AnythingOfType("*models.Task")).Return(nil)
	tasks.On("GetByID", ctx, int64(60)).Return(&models.Task{ID: 60, Title: "Print flyers", AssigneeID: 40, Status: models.TaskTodo}, nil)

	task, err := NewTaskService(tasks, notifier, zerolog.Nop()).Create(ctx, admin, &dto.TaskRequest{Title: "Print flyers", AssigneeID: 40})
	require.NoError(t, err)
	assert.Equal(t, int64(60), task.ID)
	require.Equal(t, 1, notifier.count())
	assert.Equal(t, int64(40), notifier.sent[0].UserID)
	assert.Equal(t, models.NotificationTaskAssigned, notifier.sent[0].Type)
}
