package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/dberrors"
)

// ITaskRepository defines task persistence
type ITaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	UpdateStatus(ctx context.Context, id int64, status models.TaskStatus) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.TaskFilter, offset uint64, limit int) ([]*models.Task, int64, error)
}

// TaskRepository handles the tasks table
type TaskRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db: db,
		sb: newBuilder(),
	}
}

func (r *TaskRepository) selectTasks() squirrel.SelectBuilder {
	return r.sb.Select(
		"t.id", "t.title", "t.description", "t.assignee_id", "t.created_by", "t.due_date", "t.priority", "t.status",
		"t.created_at", "t.updated_at", "pr.username", "pr.full_name", "pr.avatar_url",
	).
		From("tasks t").
		Join("profiles pr ON pr.user_id = t.assignee_id")
}

func scanTask(row pgx.Row) (*models.Task, error) {
	t := &models.Task{Assignee: &models.UserSummary{}}
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.AssigneeID, &t.CreatedBy, &t.DueDate, &t.Priority, &t.Status,
		&t.CreatedAt, &t.UpdatedAt, &t.Assignee.Username, &t.Assignee.FullName, &t.Assignee.AvatarURL)
	if err != nil {
		return nil, err
	}
	t.Assignee.ID = t.AssigneeID
	return t, nil
}

// Create inserts a task
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Status == "" {
		t.Status = models.TaskTodo
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO tasks (title, description, assignee_id, created_by, due_date, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`,
		t.Title, t.Description, t.AssigneeID, t.CreatedBy, t.DueDate, t.Priority, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error creating task: %w", err)
	}
	return nil
}

// GetByID loads one task
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	sql, args, err := r.selectTasks().Where(squirrel.Eq{"t.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get task query: %w", err)
	}

	t, err := scanTask(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("task not found")
		}
		return nil, fmt.Errorf("error retrieving task: %w", err)
	}
	return t, nil
}

// UpdateStatus moves a task
func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status models.TaskStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("task not found")
	}
	return nil
}

// Delete removes a task
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("task not found")
	}
	return nil
}

// List lists tasks: open first, then by due date
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter, offset uint64, limit int) ([]*models.Task, int64, error) {
	where := squirrel.And{}
	if filter.AssigneeID != nil {
		where = append(where, squirrel.Eq{"t.assignee_id": *filter.AssigneeID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"t.status": *filter.Status})
	}

	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("tasks t").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting tasks: %w", err)
	}

	sql, args, err := r.selectTasks().Where(where).
		OrderBy("(t.status = 'done') ASC", "t.due_date ASC NULLS LAST", "t.id DESC").
		Offset(offset).Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list tasks query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing tasks: %w", err)
	}
	defer rows.Close()

	items := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning task: %w", err)
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}
