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

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	// Accounts
	CreateAccount(ctx context.Context, user *models.User, profile *models.Profile, role models.Role) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, userID int64) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	MarkEmailVerified(ctx context.Context, userID int64) error
	SetActive(ctx context.Context, userID int64, active bool) error

	// Roles
	GetRole(ctx context.Context, userID int64) (models.Role, error)
	GetAccess(ctx context.Context, userID int64) (models.Role, bool, error)
	SetRole(ctx context.Context, userID int64, role models.Role, assignedBy int64) error
	CountByRole(ctx context.Context, role models.Role) (int64, error)

	// Profiles
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) error
	UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error
	List(ctx context.Context, filter models.UserFilter, offset uint64, limit int) ([]*models.User, int64, error)
	GetSummaries(ctx context.Context, ids []int64) (map[int64]*models.UserSummary, error)
}

// UserRepository handles users, profiles and user_roles
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: newBuilder(),
	}
}

var userColumns = []string{
	"u.id", "u.email", "u.password_hash", "u.is_active", "u.email_verified", "u.last_login_at",
	"u.created_at", "u.updated_at", "COALESCE(r.role, 'viewer')",
	"p.user_id", "p.username", "p.full_name", "p.bio", "p.location", "p.phone", "p.avatar_url",
	"p.created_at", "p.updated_at",
}

func (r *UserRepository) selectUsers() squirrel.SelectBuilder {
	return r.sb.Select(userColumns...).
		From("users u").
		Join("profiles p ON p.user_id = u.id").
		LeftJoin("user_roles r ON r.user_id = u.id")
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{Profile: &models.Profile{}}
	p := u.Profile
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.EmailVerified, &u.LastLoginAt,
		&u.CreatedAt, &u.UpdatedAt, &u.Role,
		&p.UserID, &p.Username, &p.FullName, &p.Bio, &p.Location, &p.Phone, &p.AvatarURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateAccount inserts the user, its profile and its role in one transaction
func (r *UserRepository) CreateAccount(ctx context.Context, user *models.User, profile *models.Profile, role models.Role) error {
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (email, password_hash, is_active, email_verified)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at`,
			user.Email, user.PasswordHash, user.IsActive, user.EmailVerified,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return err
		}

		profile.UserID = user.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO profiles (user_id, username, full_name, bio, location, phone, avatar_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at`,
			profile.UserID, profile.Username, profile.FullName, profile.Bio, profile.Location, profile.Phone, profile.AvatarURL,
		).Scan(&profile.CreatedAt, &profile.UpdatedAt)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, user.ID, role)
		return err
	})

	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "users_email_key"):
			return apperrors.ErrEmailAlreadyExists
		case dberrors.IsDuplicateConstraintError(err, "profiles_username_key"):
			return apperrors.ErrUsernameTaken
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error creating account")
		return fmt.Errorf("error creating account: %w", err)
	}

	user.Role = role
	user.Profile = profile
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.selectUsers().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user with profile and role
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.id": id})
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.email": email})
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Msg("Error checking email existence")
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) updateUser(ctx context.Context, userID int64, set map[string]interface{}) error {
	set["updated_at"] = time.Now()
	sql, args, err := r.sb.Update("users").SetMap(set).Where(squirrel.Eq{"id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error updating user")
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	return r.updateUser(ctx, userID, map[string]interface{}{"last_login_at": time.Now()})
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.updateUser(ctx, userID, map[string]interface{}{"password_hash": passwordHash})
}

// MarkEmailVerified flags the email as verified
func (r *UserRepository) MarkEmailVerified(ctx context.Context, userID int64) error {
	return r.updateUser(ctx, userID, map[string]interface{}{"email_verified": true})
}

// SetActive enables or disables the account
func (r *UserRepository) SetActive(ctx context.Context, userID int64, active bool) error {
	return r.updateUser(ctx, userID, map[string]interface{}{"is_active": active})
}

// GetRole reads the current role. Users without a role row are viewers.
func (r *UserRepository) GetRole(ctx context.Context, userID int64) (models.Role, error) {
	var role models.Role
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(r.role, 'viewer')
		FROM users u LEFT JOIN user_roles r ON r.user_id = u.id
		WHERE u.id = $1`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrUserNotFound
		}
		return "", fmt.Errorf("error reading role: %w", err)
	}
	return role, nil
}

// GetAccess returns the role together with the active flag of the account
func (r *UserRepository) GetAccess(ctx context.Context, userID int64) (models.Role, bool, error) {
	var (
		role   models.Role
		active bool
	)
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(r.role, 'viewer'), u.is_active
		FROM users u LEFT JOIN user_roles r ON r.user_id = u.id
		WHERE u.id = $1`, userID).Scan(&role, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, apperrors.ErrUserNotFound
		}
		return "", false, fmt.Errorf("error reading account access: %w", err)
	}
	return role, active, nil
}

// SetRole upserts the role row
func (r *UserRepository) SetRole(ctx context.Context, userID int64, role models.Role, assignedBy int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role, assigned_by, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET role = EXCLUDED.role, assigned_by = EXCLUDED.assigned_by, updated_at = NOW()`,
		userID, role, assignedBy)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error setting role")
		return fmt.Errorf("error setting role: %w", err)
	}
	return nil
}

// CountByRole counts users holding exactly role
func (r *UserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("user_roles").Where(squirrel.Eq{"role": role}))
	if err != nil {
		return 0, fmt.Errorf("error counting role %s: %w", role, err)
	}
	return total, nil
}

// GetProfile retrieves one profile
func (r *UserRepository) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	p := &models.Profile{}
	err := r.db.QueryRow(ctx, `
		SELECT user_id, username, full_name, bio, location, phone, avatar_url, created_at, updated_at
		FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.Username, &p.FullName, &p.Bio, &p.Location, &p.Phone, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving profile: %w", err)
	}
	return p, nil
}

// UpdateProfile applies the non-nil fields of update
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) error {
	q := r.sb.Update("profiles").Set("updated_at", time.Now()).Where(squirrel.Eq{"user_id": userID})
	if update.FullName != nil {
		q = q.Set("full_name", *update.FullName)
	}
	if update.Username != nil {
		q = q.Set("username", *update.Username)
	}
	if update.Bio != nil {
		q = q.Set("bio", *update.Bio)
	}
	if update.Location != nil {
		q = q.Set("location", *update.Location)
	}
	if update.Phone != nil {
		q = q.Set("phone", *update.Phone)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "profiles_username_key") {
			return apperrors.ErrUsernameTaken
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error updating profile")
		return fmt.Errorf("error updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateAvatar stores the avatar URL
func (r *UserRepository) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET avatar_url = $1, updated_at = NOW() WHERE user_id = $2`, avatarURL, userID)
	if err != nil {
		return fmt.Errorf("error updating avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// List returns a page of users ordered by full name
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter, offset uint64, limit int) ([]*models.User, int64, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"p.full_name": pattern},
			squirrel.ILike{"p.username": pattern},
			squirrel.ILike{"u.email": pattern},
		})
	}
	if filter.Role != nil {
		where = append(where, squirrel.Expr("COALESCE(r.role, 'viewer') = ?", *filter.Role))
	}
	if filter.ActiveOnly {
		where = append(where, squirrel.Eq{"u.is_active": true})
	}

	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").
		From("users u").
		Join("profiles p ON p.user_id = u.id").
		LeftJoin("user_roles r ON r.user_id = u.id").
		Where(where))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting users")
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	sql, args, err := r.selectUsers().Where(where).
		OrderBy("p.full_name ASC", "u.id ASC").
		Offset(offset).Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// GetSummaries loads compact user cards for a set of ids
func (r *UserRepository) GetSummaries(ctx context.Context, ids []int64) (map[int64]*models.UserSummary, error) {
	out := make(map[int64]*models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT user_id, username, full_name, avatar_url FROM profiles WHERE user_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading user summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s := &models.UserSummary{}
		if err := rows.Scan(&s.ID, &s.Username, &s.FullName, &s.AvatarURL); err != nil {
			return nil, fmt.Errorf("error scanning user summary: %w", err)
		}
		out[s.ID] = s
	}
	return out, rows.Err()
}
