package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	TokenRepository        *TokenRepository
	UserTokenRepository    *UserTokenRepository
	TwoFactorRepository    *TwoFactorRepository
	BadgeRepository        *BadgeRepository
	PostRepository         *PostRepository
	CommentRepository      *CommentRepository
	AnnouncementRepository *AnnouncementRepository
	AchievementRepository  *AchievementRepository
	EventRepository        *EventRepository
	ChatRepository         *ChatRepository
	MessageRepository      *MessageRepository
	NotificationRepository *NotificationRepository
	PopupRepository        *PopupRepository
	SlideshowRepository    *SlideshowRepository
	CampaignRepository     *CampaignRepository
	DonationRepository     *DonationRepository
	TaskRepository         *TaskRepository
	AIUsageRepository      *AIUsageRepository
	FAQRepository          *FAQRepository
	ErrorLogRepository     *ErrorLogRepository
	AnalyticsRepository    *AnalyticsRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		TokenRepository:        NewTokenRepository(db),
		UserTokenRepository:    NewUserTokenRepository(db),
		TwoFactorRepository:    NewTwoFactorRepository(db),
		BadgeRepository:        NewBadgeRepository(db),
		PostRepository:         NewPostRepository(db),
		CommentRepository:      NewCommentRepository(db),
		AnnouncementRepository: NewAnnouncementRepository(db),
		AchievementRepository:  NewAchievementRepository(db),
		EventRepository:        NewEventRepository(db),
		ChatRepository:         NewChatRepository(db),
		MessageRepository:      NewMessageRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		PopupRepository:        NewPopupRepository(db),
		SlideshowRepository:    NewSlideshowRepository(db),
		CampaignRepository:     NewCampaignRepository(db),
		DonationRepository:     NewDonationRepository(db),
		TaskRepository:         NewTaskRepository(db),
		AIUsageRepository:      NewAIUsageRepository(db),
		FAQRepository:          NewFAQRepository(db),
		ErrorLogRepository:     NewErrorLogRepository(db),
		AnalyticsRepository:    NewAnalyticsRepository(db),
	}
}

// likePattern escapes LIKE wildcards in user supplied search text
func likePattern(search string) string {
	escaped := make([]rune, 0, len(search)+2)
	escaped = append(escaped, '%')
	for _, r := range search {
		if r == '%' || r == '_' || r == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, r)
	}
	return string(append(escaped, '%'))
}

// queryCount runs a built count query
func queryCount(ctx context.Context, db DBTX, q squirrel.SelectBuilder) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	var total int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
