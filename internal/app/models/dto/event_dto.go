package dto

import (
	"time"

	"github.com/parivartan/platform-api/internal/app/models"
)

// EventRequest creates or replaces an event
type EventRequest struct {
	Title         string     `json:"title" binding:"required,max=200"`
	Description   *string    `json:"description" binding:"omitempty,max=5000"`
	Location      *string    `json:"location" binding:"omitempty,max=200"`
	StartsAt      time.Time  `json:"startsAt" binding:"required"`
	EndsAt        *time.Time `json:"endsAt"`
	Capacity      *int       `json:"capacity" binding:"omitempty,min=1"`
	CoverImageURL *string    `json:"coverImageUrl" binding:"omitempty,url"`
}

// RSVPRequest records the caller's RSVP
type RSVPRequest struct {
	Status models.RSVPStatus `json:"status" binding:"required,oneof=going interested not_going"`
}

// AttendanceEntry is one row of an attendance sheet
type AttendanceEntry struct {
	UserID int64                   `json:"userId" binding:"required,min=1"`
	Status models.AttendanceStatus `json:"status" binding:"required,oneof=present absent excused"`
}

// AttendanceRequest upserts an attendance sheet
type AttendanceRequest struct {
	Entries []AttendanceEntry `json:"entries" binding:"required,min=1,dive"`
}

// TaskRequest creates a task
type TaskRequest struct {
	Title       string              `json:"title" binding:"required,max=200"`
	Description *string             `json:"description" binding:"omitempty,max=5000"`
	AssigneeID  int64               `json:"assigneeId" binding:"required,min=1"`
	DueDate     *time.Time          `json:"dueDate"`
	Priority    models.TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// TaskStatusRequest moves a task
type TaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required,oneof=todo in_progress done"`
}
