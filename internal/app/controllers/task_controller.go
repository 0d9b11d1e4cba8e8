package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/services"
	"github.com/parivartan/platform-api/internal/middleware"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// TaskController handles volunteer tasks
type TaskController struct {
	taskService *services.TaskService
	logger      zerolog.Logger
}

// NewTaskController creates a new TaskController
func NewTaskController(taskService *services.TaskService, logger zerolog.Logger) *TaskController {
	return &TaskController{taskService: taskService, logger: logger}
}

func taskStatusQuery(ctx *gin.Context) (*models.TaskStatus, bool) {
	raw := ctx.Query("status")
	if raw == "" {
		return nil, true
	}
	status := models.TaskStatus(raw)
	switch status {
	case models.TaskTodo, models.TaskInProgress, models.TaskDone:
		return &status, true
	}
	badRequest(ctx, "Invalid status", "status must be one of todo, in_progress, done")
	return nil, false
}

// CreateTask assigns a task and notifies the assignee
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TaskRequest true "Task"
// @Success 201 {object} dto.APIResponse{data=models.Task} "Task created"
// @Failure 404 {object} dto.ErrorResponse "Assignee not found"
// @Router /admin/tasks [post]
func (c *TaskController) CreateTask(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	var req dto.TaskRequest
	if !bindJSON(ctx, &req) {
		return
	}

	task, err := c.taskService.Create(ctx.Request.Context(), a, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, task, "Task created successfully")
}

// ListMine lists tasks assigned to the caller
// @Summary My tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(todo, in_progress, done)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Task}} "Tasks"
// @Router /tasks/mine [get]
func (c *TaskController) ListMine(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	status, ok := taskStatusQuery(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.taskService.ListMine(ctx.Request.Context(), a, status, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Tasks retrieved successfully")
}

// ListTasks lists every task
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param assigneeId query int false "Assignee filter"
// @Param status query string false "Status filter" Enums(todo, in_progress, done)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Task}} "Tasks"
// @Router /admin/tasks [get]
func (c *TaskController) ListTasks(ctx *gin.Context) {
	status, ok := taskStatusQuery(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)
	filter := models.TaskFilter{AssigneeID: helpers.ParseInt64Query(ctx, "assigneeId"), Status: status}

	result, err := c.taskService.List(ctx.Request.Context(), filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result, "Tasks retrieved successfully")
}

// UpdateStatus moves a task
// @Summary Update task status
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param request body dto.TaskStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=models.Task} "Task updated"
// @Failure 403 {object} dto.ErrorResponse "Assignee or admin only"
// @Failure 404 {object} dto.ErrorResponse "Task not found"
// @Router /tasks/{id}/status [put]
func (c *TaskController) UpdateStatus(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.TaskStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}

	task, err := c.taskService.UpdateStatus(ctx.Request.Context(), a, id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, task, "Task updated successfully")
}

// DeleteTask removes a task
// @Summary Delete a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} dto.APIResponse "Task deleted"
// @Failure 404 {object} dto.ErrorResponse "Task not found"
// @Router /admin/tasks/{id} [delete]
func (c *TaskController) DeleteTask(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.taskService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, nil, "Task deleted successfully")
}
