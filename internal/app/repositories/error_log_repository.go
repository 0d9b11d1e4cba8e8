package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parivartan/platform-api/internal/app/models"
)

// IErrorLogRepository defines error log persistence
type IErrorLogRepository interface {
	Create(ctx context.Context, e *models.ErrorLog) error
	List(ctx context.Context, source *models.ErrorSource, severity string, offset uint64, limit int) ([]*models.ErrorLog, int64, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// ErrorLogRepository handles the error_logs table
type ErrorLogRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewErrorLogRepository creates a new ErrorLogRepository
func NewErrorLogRepository(db *pgxpool.Pool) *ErrorLogRepository {
	return &ErrorLogRepository{
		db: db,
		sb: newBuilder(),
	}
}

// Create stores one error log entry
func (r *ErrorLogRepository) Create(ctx context.Context, e *models.ErrorLog) error {
	if e.Severity == "" {
		e.Severity = "error"
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO error_logs (user_id, source, severity, message, stack, url, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
		e.UserID, e.Source, e.Severity, e.Message, e.Stack, e.URL, e.UserAgent,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("error storing error log: %w", err)
	}
	return nil
}

// List returns error logs, newest first
func (r *ErrorLogRepository) List(ctx context.Context, source *models.ErrorSource, severity string, offset uint64, limit int) ([]*models.ErrorLog, int64, error) {
	where := squirrel.And{}
	if source != nil {
		where = append(where, squirrel.Eq{"source": *source})
	}
	if severity != "" {
		where = append(where, squirrel.Eq{"severity": severity})
	}

	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("error_logs").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting error logs: %w", err)
	}

	sql, args, err := r.sb.
		Select("id", "user_id", "source", "severity", "message", "stack", "url", "user_agent", "created_at").
		From("error_logs").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list error logs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing error logs: %w", err)
	}
	defer rows.Close()

	items := []*models.ErrorLog{}
	for rows.Next() {
		e := &models.ErrorLog{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Source, &e.Severity, &e.Message, &e.Stack, &e.URL, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning error log: %w", err)
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

// DeleteOlderThan purges entries created before the given time
func (r *ErrorLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM error_logs WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("error purging error logs: %w", err)
	}
	return tag.RowsAffected(), nil
}
