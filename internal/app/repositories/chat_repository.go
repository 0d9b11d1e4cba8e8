package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/db"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/dberrors"
	"github.com/parivartan/platform-api/internal/pkg/logger"
)

// IChatRepository defines room and participant persistence
type IChatRepository interface {
	CreateGroupRoom(ctx context.Context, room *models.ChatRoom, ownerID int64, memberIDs []int64) error
	GetOrCreateDirectRoom(ctx context.Context, userA, userB int64) (*models.ChatRoom, bool, error)
	GetRoom(ctx context.Context, roomID int64) (*models.ChatRoom, error)
	RenameRoom(ctx context.Context, roomID int64, name string) error
	TouchRoom(ctx context.Context, roomID int64) error
	ListRoomsForUser(ctx context.Context, userID int64) ([]*models.ChatRoom, error)

	GetParticipant(ctx context.Context, roomID, userID int64) (*models.ChatParticipant, error)
	ListParticipants(ctx context.Context, roomID int64) ([]*models.ChatParticipant, error)
	ParticipantIDs(ctx context.Context, roomID int64) ([]int64, error)
	AddParticipants(ctx context.Context, roomID int64, userIDs []int64) error
	RemoveParticipant(ctx context.Context, roomID, userID int64) error
}

// ChatRepository handles chat_rooms and chat_participants
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// DirectKey is the order independent key of a private room between two users
func DirectKey(userA, userB int64) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return strconv.FormatInt(userA, 10) + ":" + strconv.FormatInt(userB, 10)
}

func addParticipants(ctx context.Context, tx DBTX, roomID int64, userIDs []int64, role models.ParticipantRole) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO chat_participants (room_id, user_id, role)
		SELECT $1, uid, $3 FROM UNNEST($2::bigint[]) AS uid
		ON CONFLICT (room_id, user_id) DO NOTHING`, roomID, userIDs, role)
	return err
}

// CreateGroupRoom creates a group room with ownerID as owner and memberIDs as members
func (r *ChatRepository) CreateGroupRoom(ctx context.Context, room *models.ChatRoom, ownerID int64, memberIDs []int64) error {
	room.Type = models.RoomTypeGroup
	room.CreatedBy = &ownerID

	members := make([]int64, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id != ownerID {
			members = append(members, id)
		}
	}

	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO chat_rooms (name, type, created_by) VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at`, room.Name, room.Type, ownerID,
		).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
		if err != nil {
			return err
		}
		if err := addParticipants(ctx, tx, room.ID, []int64{ownerID}, models.ParticipantOwner); err != nil {
			return err
		}
		return addParticipants(ctx, tx, room.ID, members, models.ParticipantMember)
	})
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("ownerID", ownerID).Msg("Error creating group room")
		return fmt.Errorf("error creating room: %w", err)
	}
	return nil
}

// GetOrCreateDirectRoom returns the private room of a pair, creating it when missing.
// The bool reports whether the room was created by this call.
func (r *ChatRepository) GetOrCreateDirectRoom(ctx context.Context, userA, userB int64) (*models.ChatRoom, bool, error) {
	key := DirectKey(userA, userB)
	var created bool
	room := &models.ChatRoom{}

	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO chat_rooms (type, direct_key, created_by) VALUES ('private', $1, $2)
			ON CONFLICT (direct_key) DO NOTHING
			RETURNING id`, key, userA).Scan(&room.ID)
		switch {
		case err == nil:
			created = true
			if err := addParticipants(ctx, tx, room.ID, []int64{userA, userB}, models.ParticipantMember); err != nil {
				return err
			}
		case errors.Is(err, pgx.ErrNoRows):
		default:
			return err
		}

		return tx.QueryRow(ctx, `
			SELECT id, name, type, direct_key, created_by, created_at, updated_at
			FROM chat_rooms WHERE direct_key = $1`, key,
		).Scan(&room.ID, &room.Name, &room.Type, &room.DirectKey, &room.CreatedBy, &room.CreatedAt, &room.UpdatedAt)
	})
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return nil, false, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Str("directKey", key).Msg("Error resolving direct room")
		return nil, false, fmt.Errorf("error resolving direct room: %w", err)
	}
	return room, created, nil
}

// GetRoom loads one room
func (r *ChatRepository) GetRoom(ctx context.Context, roomID int64) (*models.ChatRoom, error) {
	room := &models.ChatRoom{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, type, direct_key, created_by, created_at, updated_at FROM chat_rooms WHERE id = $1`, roomID,
	).Scan(&room.ID, &room.Name, &room.Type, &room.DirectKey, &room.CreatedBy, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("chat room not found")
		}
		return nil, fmt.Errorf("error retrieving room: %w", err)
	}
	return room, nil
}

// RenameRoom changes a room name
func (r *ChatRepository) RenameRoom(ctx context.Context, roomID int64, name string) error {
	tag, err := r.db.Exec(ctx, `UPDATE chat_rooms SET name = $1, updated_at = NOW() WHERE id = $2`, name, roomID)
	if err != nil {
		return fmt.Errorf("error renaming room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("chat room not found")
	}
	return nil
}

// TouchRoom bumps updated_at so room lists reorder
func (r *ChatRepository) TouchRoom(ctx context.Context, roomID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE chat_rooms SET updated_at = NOW() WHERE id = $1`, roomID)
	return err
}

// ListRoomsForUser lists rooms the user participates in with last message and unread count,
// most recently active first
func (r *ChatRepository) ListRoomsForUser(ctx context.Context, userID int64) ([]*models.ChatRoom, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, r.name, r.type, r.created_by, r.created_at, r.updated_at,
			lm.id, lm.sender_id, lm.content, lm.deleted_at, lm.created_at,
			(SELECT COUNT(*) FROM messages m
				WHERE m.room_id = r.id AND m.deleted_at IS NULL
				AND m.sender_id IS DISTINCT FROM $1
				AND m.id > COALESCE(rs.last_read_message_id, 0))
		FROM chat_rooms r
		JOIN chat_participants cp ON cp.room_id = r.id AND cp.user_id = $1
		LEFT JOIN message_read_status rs ON rs.room_id = r.id AND rs.user_id = $1
		LEFT JOIN LATERAL (
			SELECT id, sender_id, content, deleted_at, created_at FROM messages m
			WHERE m.room_id = r.id ORDER BY m.created_at DESC, m.id DESC LIMIT 1
		) lm ON TRUE
		ORDER BY COALESCE(lm.created_at, r.updated_at) DESC, r.id DESC`, userID)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error listing rooms")
		return nil, fmt.Errorf("error listing rooms: %w", err)
	}
	defer rows.Close()

	rooms := []*models.ChatRoom{}
	for rows.Next() {
		room := &models.ChatRoom{}
		var (
			lastID        *int64
			lastSender    *int64
			lastContent   *string
			lastDeletedAt *time.Time
			lastCreatedAt *time.Time
		)
		if err := rows.Scan(&room.ID, &room.Name, &room.Type, &room.CreatedBy, &room.CreatedAt, &room.UpdatedAt,
			&lastID, &lastSender, &lastContent, &lastDeletedAt, &lastCreatedAt, &room.UnreadCount); err != nil {
			return nil, fmt.Errorf("error scanning room: %w", err)
		}
		if lastID != nil {
			room.LastMessage = &models.Message{
				ID:        *lastID,
				RoomID:    room.ID,
				SenderID:  lastSender,
				DeletedAt: lastDeletedAt,
			}
			if lastContent != nil {
				room.LastMessage.Content = *lastContent
			}
			if lastCreatedAt != nil {
				room.LastMessage.CreatedAt = *lastCreatedAt
			}
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// GetParticipant returns the membership row or ErrResourceNotFound
func (r *ChatRepository) GetParticipant(ctx context.Context, roomID, userID int64) (*models.ChatParticipant, error) {
	p := &models.ChatParticipant{}
	err := r.db.QueryRow(ctx, `
		SELECT room_id, user_id, role, joined_at FROM chat_participants WHERE room_id = $1 AND user_id = $2`,
		roomID, userID).Scan(&p.RoomID, &p.UserID, &p.Role, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving participant: %w", err)
	}
	return p, nil
}

// ListParticipants lists members of a room, owners first
func (r *ChatRepository) ListParticipants(ctx context.Context, roomID int64) ([]*models.ChatParticipant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT cp.room_id, cp.user_id, cp.role, cp.joined_at, pr.username, pr.full_name, pr.avatar_url
		FROM chat_participants cp JOIN profiles pr ON pr.user_id = cp.user_id
		WHERE cp.room_id = $1 ORDER BY cp.role DESC, pr.full_name`, roomID)
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}
	defer rows.Close()

	items := []*models.ChatParticipant{}
	for rows.Next() {
		p := &models.ChatParticipant{User: &models.UserSummary{}}
		if err := rows.Scan(&p.RoomID, &p.UserID, &p.Role, &p.JoinedAt, &p.User.Username, &p.User.FullName, &p.User.AvatarURL); err != nil {
			return nil, fmt.Errorf("error scanning participant: %w", err)
		}
		p.User.ID = p.UserID
		items = append(items, p)
	}
	return items, rows.Err()
}

// ParticipantIDs lists the user ids of a room
func (r *ChatRepository) ParticipantIDs(ctx context.Context, roomID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id FROM chat_participants WHERE room_id = $1`, roomID)
	if err != nil {
		return nil, fmt.Errorf("error listing participant ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("error scanning participant ids: %w", err)
	}
	return ids, nil
}

// AddParticipants adds members; existing members are left unchanged
func (r *ChatRepository) AddParticipants(ctx context.Context, roomID int64, userIDs []int64) error {
	if err := addParticipants(ctx, r.db, roomID, userIDs, models.ParticipantMember); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error adding participants: %w", err)
	}
	return nil
}

// RemoveParticipant removes a member and their read marker
func (r *ChatRepository) RemoveParticipant(ctx context.Context, roomID, userID int64) error {
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM chat_participants WHERE room_id = $1 AND user_id = $2`, roomID, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewResourceNotFoundError("participant not found")
		}
		_, err = tx.Exec(ctx, `DELETE FROM message_read_status WHERE room_id = $1 AND user_id = $2`, roomID, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return err
		}
		return fmt.Errorf("error removing participant: %w", err)
	}
	return nil
}
