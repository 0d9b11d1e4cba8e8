package services

import (
	"context"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// TaskService handles admin assigned tasks
type TaskService struct {
	taskRepo repositories.ITaskRepository
	notifier Notifier
	logger   zerolog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repositories.ITaskRepository, notifier Notifier, logger zerolog.Logger) *TaskService {
	return &TaskService{taskRepo: taskRepo, notifier: notifier, logger: logger}
}

// Create assigns a new task and notifies the assignee
func (s *TaskService) Create(ctx context.Context, actor appauth.Actor, req *dto.TaskRequest) (*models.Task, error) {
	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		CreatedBy:   &actor.UserID,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, newNotification(task.AssigneeID, models.NotificationTaskAssigned,
		"New task: "+task.Title, "", "/tasks/mine"))

	created, err := s.taskRepo.GetByID(ctx, task.ID)
	if err != nil {
		return task, nil
	}
	return created, nil
}

// ListMine lists tasks assigned to the caller
func (s *TaskService) ListMine(ctx context.Context, actor appauth.Actor, status *models.TaskStatus, page, size int) (*dto.PaginatedResponse, error) {
	return s.List(ctx, models.TaskFilter{AssigneeID: &actor.UserID, Status: status}, page, size)
}

// List lists tasks matching filter, open tasks first
func (s *TaskService) List(ctx context.Context, filter models.TaskFilter, page, size int) (*dto.PaginatedResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	tasks, total, err := s.taskRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	return paginate(tasks, total, page, size), nil
}

// UpdateStatus moves a task; assignee or staff only
func (s *TaskService) UpdateStatus(ctx context.Context, actor appauth.Actor, id int64, status models.TaskStatus) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(task.AssigneeID) {
		return nil, apperrors.NewForbiddenError("only the assignee or an admin can update this task")
	}
	if task.Status == status {
		return task, nil
	}
	if err := s.taskRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	task.Status = status
	return task, nil
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.taskRepo.Delete(ctx, id)
}
