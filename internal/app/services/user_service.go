package services

import (
	"context"
	"fmt"
	"mime/multipart"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/filestorage"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// UserService handles profiles, the member directory and account administration
type UserService struct {
	userRepo        repositories.IUserRepository
	tokenRepo       repositories.ITokenRepository
	badgeRepo       repositories.IBadgeRepository
	achievementRepo repositories.IAchievementRepository
	storage         filestorage.FileStorage
	notifier        Notifier
	logger          zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	badgeRepo repositories.IBadgeRepository,
	achievementRepo repositories.IAchievementRepository,
	storage filestorage.FileStorage,
	notifier Notifier,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo:        userRepo,
		tokenRepo:       tokenRepo,
		badgeRepo:       badgeRepo,
		achievementRepo: achievementRepo,
		storage:         storage,
		notifier:        notifier,
		logger:          logger,
	}
}

// GetMe returns the caller's account with badges
func (s *UserService) GetMe(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.badgeRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	resp.Badges = badges
	return resp, nil
}

// UpdateMe applies profile changes and returns the updated account
func (s *UserService) UpdateMe(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	update := models.ProfileUpdate{
		FullName: req.FullName,
		Username: req.Username,
		Bio:      req.Bio,
		Location: req.Location,
		Phone:    req.Phone,
	}
	if err := s.userRepo.UpdateProfile(ctx, userID, update); err != nil {
		return nil, err
	}
	return s.GetMe(ctx, userID)
}

// UploadAvatar stores a new avatar image and removes the previous file
func (s *UserService) UploadAvatar(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (*models.Profile, error) {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	info, err := s.storage.SaveImage(ctx, fileHeader, "avatars")
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateAvatar(ctx, userID, info.URL); err != nil {
		_ = s.storage.Delete(ctx, info.URL)
		return nil, err
	}

	if profile.AvatarURL != nil && *profile.AvatarURL != "" {
		if err := s.storage.Delete(ctx, *profile.AvatarURL); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Error deleting previous avatar")
		}
	}

	profile.AvatarURL = &info.URL
	return profile, nil
}

// GetPublicProfile returns what other members see about a user
func (s *UserService) GetPublicProfile(ctx context.Context, userID int64) (*dto.PublicProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserNotFound
	}

	badges, err := s.badgeRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	achievements, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if badges == nil {
		badges = []*models.VerificationBadge{}
	}
	if achievements == nil {
		achievements = []*models.Achievement{}
	}

	return &dto.PublicProfileResponse{
		Profile:      user.Profile,
		Role:         user.Role,
		Badges:       badges,
		Achievements: achievements,
	}, nil
}

// Directory lists active members matching search
func (s *UserService) Directory(ctx context.Context, search string, page, size int) (*dto.PaginatedResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	users, total, err := s.userRepo.List(ctx, models.UserFilter{Search: search, ActiveOnly: true}, offset, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]*dto.DirectoryEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, dto.NewDirectoryEntry(u))
	}
	return paginate(entries, total, page, size), nil
}

// ListUsers is the admin listing, including disabled accounts
func (s *UserService) ListUsers(ctx context.Context, search string, role *models.Role, page, size int) (*dto.PaginatedResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	users, total, err := s.userRepo.List(ctx, models.UserFilter{Search: search, Role: role}, offset, limit)
	if err != nil {
		return nil, err
	}
	items := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.NewUserResponse(u))
	}
	return paginate(items, total, page, size), nil
}

// SetRole changes a user's role following the role assignment rules
func (s *UserService) SetRole(ctx context.Context, actor appauth.Actor, targetID int64, role models.Role) error {
	current, err := s.userRepo.GetRole(ctx, targetID)
	if err != nil {
		return err
	}
	if current == role {
		return nil
	}

	var superAdmins int64
	if current == models.RoleSuperAdmin {
		if superAdmins, err = s.userRepo.CountByRole(ctx, models.RoleSuperAdmin); err != nil {
			return err
		}
	}
	if err := appauth.CanAssignRole(actor, targetID, current, role, superAdmins); err != nil {
		return err
	}

	if err := s.userRepo.SetRole(ctx, targetID, role, actor.UserID); err != nil {
		return err
	}

	s.logger.Info().
		Int64("actorID", actor.UserID).
		Int64("userID", targetID).
		Str("from", string(current)).
		Str("to", string(role)).
		Msg("Role changed")
	s.notifier.Notify(ctx, newNotification(targetID, models.NotificationRoleChanged,
		fmt.Sprintf("Your role is now %s", role), "", ""))
	return nil
}

// SetStatus activates or disables an account. Disabling signs the user out.
func (s *UserService) SetStatus(ctx context.Context, actor appauth.Actor, targetID int64, active bool) error {
	role, err := s.userRepo.GetRole(ctx, targetID)
	if err != nil {
		return err
	}
	if err := appauth.CanChangeStatus(actor, targetID, role); err != nil {
		return err
	}
	if err := s.userRepo.SetActive(ctx, targetID, active); err != nil {
		return err
	}
	if !active {
		if err := s.tokenRepo.RevokeAllUserTokens(ctx, targetID); err != nil {
			return err
		}
	}
	s.logger.Info().Int64("actorID", actor.UserID).Int64("userID", targetID).Bool("active", active).Msg("Account status changed")
	return nil
}

// GrantBadge grants a verification badge
func (s *UserService) GrantBadge(ctx context.Context, actor appauth.Actor, req *dto.GrantBadgeRequest) (*models.VerificationBadge, error) {
	badge := &models.VerificationBadge{
		UserID:    req.UserID,
		BadgeType: req.BadgeType,
		GrantedBy: &actor.UserID,
	}
	if err := s.badgeRepo.Grant(ctx, badge); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, newNotification(req.UserID, models.NotificationBadgeGranted,
		fmt.Sprintf("You received the %s badge", req.BadgeType), "", ""))
	return badge, nil
}

// RevokeBadge removes a badge from a user
func (s *UserService) RevokeBadge(ctx context.Context, userID int64, badgeType string) error {
	return s.badgeRepo.Revoke(ctx, userID, badgeType)
}

// AwardAchievement records an achievement and notifies the user
func (s *UserService) AwardAchievement(ctx context.Context, actor appauth.Actor, req *dto.AwardAchievementRequest) (*models.Achievement, error) {
	achievement := &models.Achievement{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		Points:      req.Points,
		AwardedBy:   &actor.UserID,
	}
	if err := s.achievementRepo.Create(ctx, achievement); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, newNotification(req.UserID, models.NotificationAchievement,
		"New achievement: "+req.Title, "", fmt.Sprintf("/profiles/%d", req.UserID)))
	return achievement, nil
}

// DeleteAchievement removes an achievement
func (s *UserService) DeleteAchievement(ctx context.Context, id int64) error {
	return s.achievementRepo.Delete(ctx, id)
}

// ListAchievements lists the achievements of a user
func (s *UserService) ListAchievements(ctx context.Context, userID int64) ([]*models.Achievement, error) {
	if _, err := s.userRepo.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	achievements, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if achievements == nil {
		achievements = []*models.Achievement{}
	}
	return achievements, nil
}
