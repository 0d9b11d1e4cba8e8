package models

import "time"

// TaskStatus is the progress of a task
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// TaskPriority orders tasks
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task is an admin assigned work item
type Task struct {
	ID          int64        `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Description *string      `json:"description,omitempty" db:"description"`
	AssigneeID  int64        `json:"assigneeId" db:"assignee_id"`
	CreatedBy   *int64       `json:"createdBy,omitempty" db:"created_by"`
	DueDate     *time.Time   `json:"dueDate,omitempty" db:"due_date"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	Status      TaskStatus   `json:"status" db:"status"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`

	Assignee *UserSummary `json:"assignee,omitempty"`
}

// AIUsageStatus is the outcome of a generation request
type AIUsageStatus string

const (
	AIUsagePending AIUsageStatus = "pending"
	AIUsageSuccess AIUsageStatus = "success"
	AIUsageFailed  AIUsageStatus = "failed"
)

// AIUsage records one content studio generation
type AIUsage struct {
	ID           int64         `json:"id" db:"id"`
	UserID       int64         `json:"userId" db:"user_id"`
	Kind         string        `json:"kind" db:"kind"`
	Prompt       string        `json:"prompt" db:"prompt"`
	Status       AIUsageStatus `json:"status" db:"status"`
	ResultURL    *string       `json:"resultUrl,omitempty" db:"result_url"`
	ErrorMessage *string       `json:"errorMessage,omitempty" db:"error_message"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
}

// ChatbotFAQ is a canned answer for the help chatbot
type ChatbotFAQ struct {
	ID        int64     `json:"id" db:"id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	Keywords  []string  `json:"keywords" db:"keywords"`
	Priority  int       `json:"priority" db:"priority"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ErrorSource tells where an error log entry came from
type ErrorSource string

const (
	ErrorSourceClient ErrorSource = "client"
	ErrorSourceServer ErrorSource = "server"
)

// ErrorLog is a recorded client or server error
type ErrorLog struct {
	ID        int64       `json:"id" db:"id"`
	UserID    *int64      `json:"userId,omitempty" db:"user_id"`
	Source    ErrorSource `json:"source" db:"source"`
	Severity  string      `json:"severity" db:"severity"`
	Message   string      `json:"message" db:"message"`
	Stack     *string     `json:"stack,omitempty" db:"stack"`
	URL       *string     `json:"url,omitempty" db:"url"`
	UserAgent *string     `json:"userAgent,omitempty" db:"user_agent"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

// Analytics is the admin dashboard snapshot
type Analytics struct {
	UsersByRole        map[Role]int64 `json:"usersByRole"`
	TotalUsers         int64          `json:"totalUsers"`
	TotalPosts         int64          `json:"totalPosts"`
	HiddenPosts        int64          `json:"hiddenPosts"`
	TotalEvents        int64          `json:"totalEvents"`
	UpcomingEvents     int64          `json:"upcomingEvents"`
	ActiveCampaigns    int64          `json:"activeCampaigns"`
	CompletedDonations int64          `json:"completedDonations"`
	DonationsRaised    int64          `json:"donationsRaised"`
	MessagesLast7Days  int64          `json:"messagesLast7Days"`
	AIGenerationsToday int64          `json:"aiGenerationsToday"`
	ErrorsLast24Hours  int64          `json:"errorsLast24Hours"`
	GeneratedAt        time.Time      `json:"generatedAt"`
}

// TaskFilter narrows admin task listings
type TaskFilter struct {
	AssigneeID *int64
	Status     *TaskStatus
}
