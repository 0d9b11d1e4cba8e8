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
	"github.com/parivartan/platform-api/internal/pkg/logger"
)

// IMessageRepository defines message, reaction and read marker persistence
type IMessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	ListByRoom(ctx context.Context, roomID int64, beforeID *int64, limit int) ([]*models.Message, error)
	ListPinned(ctx context.Context, roomID int64) ([]*models.Message, error)
	UpdateContent(ctx context.Context, id int64, content string) (*time.Time, error)
	SoftDelete(ctx context.Context, id int64) (*time.Time, error)
	SetPinned(ctx context.Context, id int64, pinned bool, by int64) error

	ToggleReaction(ctx context.Context, messageID, userID int64, emoji string) (bool, error)
	ReactionSummaries(ctx context.Context, messageIDs []int64) (map[int64][]models.ReactionSummary, error)

	AdvanceReadMarker(ctx context.Context, roomID, userID, messageID int64) (*models.ReadStatus, error)
}

// MessageRepository handles messages, message_reactions and message_read_status
type MessageRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{
		db: db,
		sb: newBuilder(),
	}
}

func (r *MessageRepository) selectMessages() squirrel.SelectBuilder {
	return r.sb.Select(
		"m.id", "m.room_id", "m.sender_id", "m.content", "m.reply_to_id", "m.is_pinned", "m.pinned_by",
		"m.pinned_at", "m.edited_at", "m.deleted_at", "m.created_at",
		"pr.username", "pr.full_name", "pr.avatar_url",
	).
		From("messages m").
		LeftJoin("profiles pr ON pr.user_id = m.sender_id")
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	m := &models.Message{}
	var username, fullName *string
	var avatar *string
	err := row.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.ReplyToID, &m.IsPinned, &m.PinnedBy,
		&m.PinnedAt, &m.EditedAt, &m.DeletedAt, &m.CreatedAt, &username, &fullName, &avatar)
	if err != nil {
		return nil, err
	}
	if m.SenderID != nil && username != nil {
		m.Sender = &models.UserSummary{ID: *m.SenderID, Username: *username, AvatarURL: avatar}
		if fullName != nil {
			m.Sender.FullName = *fullName
		}
	}
	return m, nil
}

func (r *MessageRepository) queryMessages(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Message, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build messages query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing messages")
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	defer rows.Close()

	msgs := []*models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Create inserts a message. A reply must target a message of the same room.
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ReplyToID != nil {
		var sameRoom bool
		err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM messages WHERE id = $1 AND room_id = $2)`,
			*msg.ReplyToID, msg.RoomID).Scan(&sameRoom)
		if err != nil {
			return fmt.Errorf("error checking reply target: %w", err)
		}
		if !sameRoom {
			return apperrors.NewBadRequestError("reply target is not in this room")
		}
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO messages (room_id, sender_id, content, reply_to_id) VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, msg.RoomID, msg.SenderID, msg.Content, msg.ReplyToID,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		logger.Error().Err(err).Int64("roomID", msg.RoomID).Msg("Error creating message")
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

// GetByID loads one message
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	sql, args, err := r.selectMessages().Where(squirrel.Eq{"m.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get message query: %w", err)
	}

	m, err := scanMessage(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("message not found")
		}
		return nil, fmt.Errorf("error retrieving message: %w", err)
	}
	return m, nil
}

// ListByRoom returns up to limit messages newest first, strictly older than beforeID when set
func (r *MessageRepository) ListByRoom(ctx context.Context, roomID int64, beforeID *int64, limit int) ([]*models.Message, error) {
	q := r.selectMessages().Where(squirrel.Eq{"m.room_id": roomID})
	if beforeID != nil {
		q = q.Where("(m.created_at, m.id) < (SELECT b.created_at, b.id FROM messages b WHERE b.id = ?)", *beforeID)
	}
	q = q.OrderBy("m.created_at DESC", "m.id DESC").Limit(uint64(limit))
	return r.queryMessages(ctx, q)
}

// ListPinned lists pinned, undeleted messages of a room, most recently pinned first
func (r *MessageRepository) ListPinned(ctx context.Context, roomID int64) ([]*models.Message, error) {
	q := r.selectMessages().
		Where(squirrel.Eq{"m.room_id": roomID, "m.is_pinned": true, "m.deleted_at": nil}).
		OrderBy("m.pinned_at DESC", "m.id DESC")
	return r.queryMessages(ctx, q)
}

// UpdateContent edits an undeleted message and returns the edit time
func (r *MessageRepository) UpdateContent(ctx context.Context, id int64, content string) (*time.Time, error) {
	var editedAt time.Time
	err := r.db.QueryRow(ctx, `
		UPDATE messages SET content = $1, edited_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL RETURNING edited_at`, content, id).Scan(&editedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("message not found")
		}
		return nil, fmt.Errorf("error editing message: %w", err)
	}
	return &editedAt, nil
}

// SoftDelete clears content, unpins and stamps deleted_at. Deleting twice is a no-op.
func (r *MessageRepository) SoftDelete(ctx context.Context, id int64) (*time.Time, error) {
	var deletedAt time.Time
	err := r.db.QueryRow(ctx, `
		UPDATE messages SET content = '', is_pinned = FALSE, pinned_by = NULL, pinned_at = NULL,
			deleted_at = COALESCE(deleted_at, NOW())
		WHERE id = $1 RETURNING deleted_at`, id).Scan(&deletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("message not found")
		}
		return nil, fmt.Errorf("error deleting message: %w", err)
	}
	return &deletedAt, nil
}

// SetPinned pins or unpins a message
func (r *MessageRepository) SetPinned(ctx context.Context, id int64, pinned bool, by int64) error {
	var tagErr error
	if pinned {
		tag, err := r.db.Exec(ctx, `
			UPDATE messages SET is_pinned = TRUE, pinned_by = $1, pinned_at = NOW()
			WHERE id = $2 AND deleted_at IS NULL`, by, id)
		if err == nil && tag.RowsAffected() == 0 {
			return apperrors.NewResourceNotFoundError("message not found")
		}
		tagErr = err
	} else {
		tag, err := r.db.Exec(ctx, `
			UPDATE messages SET is_pinned = FALSE, pinned_by = NULL, pinned_at = NULL WHERE id = $1`, id)
		if err == nil && tag.RowsAffected() == 0 {
			return apperrors.NewResourceNotFoundError("message not found")
		}
		tagErr = err
	}
	if tagErr != nil {
		return fmt.Errorf("error pinning message: %w", tagErr)
	}
	return nil
}

// ToggleReaction adds the reaction, or removes it when present. Returns true when added.
func (r *MessageRepository) ToggleReaction(ctx context.Context, messageID, userID int64, emoji string) (bool, error) {
	var added bool
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM message_reactions WHERE message_id = $1 AND user_id = $2 AND emoji = $3`,
			messageID, userID, emoji)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO message_reactions (message_id, user_id, emoji) VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`, messageID, userID, emoji)
		added = err == nil
		return err
	})
	if err != nil {
		return false, fmt.Errorf("error toggling reaction: %w", err)
	}
	return added, nil
}

// ReactionSummaries aggregates reactions per message and emoji, in first-use order
func (r *MessageRepository) ReactionSummaries(ctx context.Context, messageIDs []int64) (map[int64][]models.ReactionSummary, error) {
	out := make(map[int64][]models.ReactionSummary, len(messageIDs))
	if len(messageIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT message_id, emoji, COUNT(*), ARRAY_AGG(user_id ORDER BY created_at)
		FROM message_reactions WHERE message_id = ANY($1)
		GROUP BY message_id, emoji
		ORDER BY message_id, MIN(created_at)`, messageIDs)
	if err != nil {
		return nil, fmt.Errorf("error loading reactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var messageID int64
		var s models.ReactionSummary
		if err := rows.Scan(&messageID, &s.Emoji, &s.Count, &s.UserIDs); err != nil {
			return nil, fmt.Errorf("error scanning reaction: %w", err)
		}
		out[messageID] = append(out[messageID], s)
	}
	return out, rows.Err()
}

// AdvanceReadMarker moves the read marker forward; it never moves backwards
func (r *MessageRepository) AdvanceReadMarker(ctx context.Context, roomID, userID, messageID int64) (*models.ReadStatus, error) {
	rs := &models.ReadStatus{RoomID: roomID, UserID: userID}
	err := r.db.QueryRow(ctx, `
		INSERT INTO message_read_status (room_id, user_id, last_read_message_id, read_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (room_id, user_id) DO UPDATE SET
			last_read_message_id = GREATEST(message_read_status.last_read_message_id, EXCLUDED.last_read_message_id),
			read_at = CASE
				WHEN EXCLUDED.last_read_message_id > message_read_status.last_read_message_id THEN NOW()
				ELSE message_read_status.read_at
			END
		RETURNING last_read_message_id, read_at`, roomID, userID, messageID,
	).Scan(&rs.LastReadMessageID, &rs.ReadAt)
	if err != nil {
		return nil, fmt.Errorf("error advancing read marker: %w", err)
	}
	return rs, nil
}
