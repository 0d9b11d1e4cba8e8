package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/db"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/dberrors"
	"github.com/parivartan/platform-api/internal/pkg/logger"
)

// ErrEventFull is returned when a going RSVP would exceed capacity
var ErrEventFull = apperrors.NewConflictError("event is at full capacity")

// IEventRepository defines events, RSVPs and attendance persistence
type IEventRepository interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id, viewerID int64) (*models.Event, error)
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, upcomingFrom *time.Time, viewerID int64, offset uint64, limit int) ([]*models.Event, int64, error)

	SetRSVP(ctx context.Context, eventID, userID int64, status models.RSVPStatus) error
	DeleteRSVP(ctx context.Context, eventID, userID int64) error
	ListRSVPs(ctx context.Context, eventID int64) ([]*models.EventRSVP, error)

	UpsertAttendance(ctx context.Context, eventID, markedBy int64, entries []models.Attendance) error
	ListAttendance(ctx context.Context, eventID int64) ([]*models.Attendance, error)
	ListAttendanceByUser(ctx context.Context, userID int64) ([]*models.Attendance, error)
}

// EventRepository handles events, event_rsvps and attendance
type EventRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{
		db: db,
		sb: newBuilder(),
	}
}

func (r *EventRepository) selectEvents(viewerID int64) squirrel.SelectBuilder {
	return r.sb.Select(
		"e.id", "e.title", "e.description", "e.location", "e.starts_at", "e.ends_at", "e.capacity",
		"e.cover_image_url", "e.created_by", "e.created_at", "e.updated_at",
		"(SELECT COUNT(*) FROM event_rsvps v WHERE v.event_id = e.id AND v.status = 'going')",
		"(SELECT COUNT(*) FROM event_rsvps v WHERE v.event_id = e.id AND v.status = 'interested')",
	).
		Column(squirrel.Expr("(SELECT v.status FROM event_rsvps v WHERE v.event_id = e.id AND v.user_id = ?)", viewerID)).
		From("events e")
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	e := &models.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt, &e.Capacity,
		&e.CoverImageURL, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
		&e.GoingCount, &e.InterestedCount, &e.MyRSVP,
	)
	return e, err
}

// Create inserts an event
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO events (title, description, location, starts_at, ends_at, capacity, cover_image_url, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at, updated_at`,
		e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.Capacity, e.CoverImageURL, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewBadRequestError("event end must not precede its start")
		}
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}

// GetByID loads an event with RSVP counts
func (r *EventRepository) GetByID(ctx context.Context, id, viewerID int64) (*models.Event, error) {
	sql, args, err := r.selectEvents(viewerID).Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get event query: %w", err)
	}

	e, err := scanEvent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("event not found")
		}
		return nil, fmt.Errorf("error retrieving event: %w", err)
	}
	return e, nil
}

// Update replaces an event
func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	err := r.db.QueryRow(ctx, `
		UPDATE events SET title = $1, description = $2, location = $3, starts_at = $4, ends_at = $5,
			capacity = $6, cover_image_url = $7, updated_at = NOW()
		WHERE id = $8 RETURNING updated_at`,
		e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.Capacity, e.CoverImageURL, e.ID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewResourceNotFoundError("event not found")
		}
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewBadRequestError("event end must not precede its start")
		}
		return fmt.Errorf("error updating event: %w", err)
	}
	return nil
}

// Delete removes an event
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("event not found")
	}
	return nil
}

// List returns events. With upcomingFrom set, only events starting after it, soonest first.
func (r *EventRepository) List(ctx context.Context, upcomingFrom *time.Time, viewerID int64, offset uint64, limit int) ([]*models.Event, int64, error) {
	where := squirrel.And{}
	order := "e.starts_at DESC"
	if upcomingFrom != nil {
		where = append(where, squirrel.GtOrEq{"e.starts_at": *upcomingFrom})
		order = "e.starts_at ASC"
	}

	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("events e").Where(where))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting events: %w", err)
	}

	sql, args, err := r.selectEvents(viewerID).Where(where).
		OrderBy(order, "e.id ASC").
		Offset(offset).Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list events query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing events")
		return nil, 0, fmt.Errorf("error listing events: %w", err)
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

// checkCapacity refuses a going RSVP when goingOthers, the going RSVPs of
// everyone but the caller, already fill the event
func checkCapacity(status models.RSVPStatus, capacity *int, goingOthers int) error {
	if status != models.RSVPGoing || capacity == nil {
		return nil
	}
	if goingOthers >= *capacity {
		return ErrEventFull
	}
	return nil
}

// SetRSVP upserts an RSVP. Going RSVPs lock the event row so capacity cannot be oversold.
func (r *EventRepository) SetRSVP(ctx context.Context, eventID, userID int64, status models.RSVPStatus) error {
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var capacity *int
		err := tx.QueryRow(ctx, `SELECT capacity FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&capacity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewResourceNotFoundError("event not found")
			}
			return err
		}

		if status == models.RSVPGoing && capacity != nil {
			var going int
			err := tx.QueryRow(ctx, `
				SELECT COUNT(*) FROM event_rsvps
				WHERE event_id = $1 AND status = 'going' AND user_id <> $2`, eventID, userID).Scan(&going)
			if err != nil {
				return err
			}
			if err := checkCapacity(status, capacity, going); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO event_rsvps (event_id, user_id, status) VALUES ($1, $2, $3)
			ON CONFLICT (event_id, user_id) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()`,
			eventID, userID, status)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrResourceNotFound) {
			return err
		}
		return fmt.Errorf("error saving rsvp: %w", err)
	}
	return nil
}

// DeleteRSVP withdraws an RSVP
func (r *EventRepository) DeleteRSVP(ctx context.Context, eventID, userID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM event_rsvps WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("error deleting rsvp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("rsvp not found")
	}
	return nil
}

// ListRSVPs lists every RSVP of an event with the user card
func (r *EventRepository) ListRSVPs(ctx context.Context, eventID int64) ([]*models.EventRSVP, error) {
	rows, err := r.db.Query(ctx, `
		SELECT v.event_id, v.user_id, v.status, v.created_at, v.updated_at, pr.username, pr.full_name, pr.avatar_url
		FROM event_rsvps v JOIN profiles pr ON pr.user_id = v.user_id
		WHERE v.event_id = $1 ORDER BY v.status, pr.full_name`, eventID)
	if err != nil {
		return nil, fmt.Errorf("error listing rsvps: %w", err)
	}
	defer rows.Close()

	items := []*models.EventRSVP{}
	for rows.Next() {
		v := &models.EventRSVP{User: &models.UserSummary{}}
		if err := rows.Scan(&v.EventID, &v.UserID, &v.Status, &v.CreatedAt, &v.UpdatedAt,
			&v.User.Username, &v.User.FullName, &v.User.AvatarURL); err != nil {
			return nil, fmt.Errorf("error scanning rsvp: %w", err)
		}
		v.User.ID = v.UserID
		items = append(items, v)
	}
	return items, rows.Err()
}

// UpsertAttendance writes an attendance sheet in one transaction
func (r *EventRepository) UpsertAttendance(ctx context.Context, eventID, markedBy int64, entries []models.Attendance) error {
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range entries {
			batch.Queue(`
				INSERT INTO attendance (event_id, user_id, status, marked_by, marked_at)
				VALUES ($1, $2, $3, $4, NOW())
				ON CONFLICT (event_id, user_id) DO UPDATE
				SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, marked_at = NOW()`,
				eventID, e.UserID, e.Status, markedBy)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("event or user not found")
		}
		logger.Error().Err(err).Int64("eventID", eventID).Msg("Error saving attendance")
		return fmt.Errorf("error saving attendance: %w", err)
	}
	return nil
}

func (r *EventRepository) listAttendance(ctx context.Context, where string, arg int64) ([]*models.Attendance, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.event_id, a.user_id, a.status, a.marked_by, a.marked_at, e.title, pr.username, pr.full_name, pr.avatar_url
		FROM attendance a
		JOIN events e ON e.id = a.event_id
		JOIN profiles pr ON pr.user_id = a.user_id
		WHERE `+where+` ORDER BY e.starts_at DESC, pr.full_name`, arg)
	if err != nil {
		return nil, fmt.Errorf("error listing attendance: %w", err)
	}
	defer rows.Close()

	items := []*models.Attendance{}
	for rows.Next() {
		a := &models.Attendance{User: &models.UserSummary{}}
		if err := rows.Scan(&a.EventID, &a.UserID, &a.Status, &a.MarkedBy, &a.MarkedAt, &a.EventTitle,
			&a.User.Username, &a.User.FullName, &a.User.AvatarURL); err != nil {
			return nil, fmt.Errorf("error scanning attendance: %w", err)
		}
		a.User.ID = a.UserID
		items = append(items, a)
	}
	return items, rows.Err()
}

// ListAttendance lists the sheet of one event
func (r *EventRepository) ListAttendance(ctx context.Context, eventID int64) ([]*models.Attendance, error) {
	return r.listAttendance(ctx, "a.event_id = $1", eventID)
}

// ListAttendanceByUser lists a user's attendance history
func (r *EventRepository) ListAttendanceByUser(ctx context.Context, userID int64) ([]*models.Attendance, error) {
	return r.listAttendance(ctx, "a.user_id = $1", userID)
}
