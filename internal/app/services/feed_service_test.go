package services

import (
	"context"
	"testing"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type feedFixture struct {
	posts     *mockPostRepo
	comments  *mockCommentRepo
	notifier  *fakeNotifier
	publisher *fakePublisher
	service   *FeedService
}

func newFeedFixture() *feedFixture {
	f := &feedFixture{
		posts:     new(mockPostRepo),
		comments:  new(mockCommentRepo),
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
	}
	f.service = NewFeedService(f.posts, f.comments, nil, nil, f.notifier, f.publisher, zerolog.Nop())
	return f
}

func TestFeed_ListPostsForcesPublishedForMembers(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture()
	hidden := models.PostStatusHidden
	f.posts.On("List", ctx, mock.MatchedBy(func(filter models.PostFilter) bool {
		return filter.Status != nil && *filter.Status == models.PostStatusPublished
	}), uint64(0), 10).Return([]*models.Post{}, int64(0), nil)

	member := appauth.Actor{UserID: 5, Role: models.RoleMember}
	resp, err := f.service.ListPosts(ctx, member, nil, &hidden, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Pagination.TotalItems)
	f.posts.AssertExpectations(t)
}

func TestFeed_HiddenPostVisibility(t *testing.T) {
	ctx := context.Background()
	post := &models.Post{ID: 3, AuthorID: 7, Status: models.PostStatusHidden}

	f := newFeedFixture()
	f.posts.On("GetByID", ctx, int64(3), mock.Anything).Return(post, nil)

	_, err := f.service.GetPost(ctx, appauth.Actor{UserID: 5, Role: models.RoleMember}, 3)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	got, err := f.service.GetPost(ctx, appauth.Actor{UserID: 7, Role: models.RoleMember}, 3)
	require.NoError(t, err)
	assert.Equal(t, post, got)

	_, err = f.service.GetPost(ctx, appauth.Actor{UserID: 1, Role: models.RoleAdmin}, 3)
	assert.NoError(t, err)
}

func TestFeed_ToggleLikeNotifiesAuthorOnce(t *testing.T) {
	ctx := context.Background()
	post := &models.Post{ID: 3, AuthorID: 7, Status: models.PostStatusPublished}

	t.Run("someone else likes", func(t *testing.T) {
		f := newFeedFixture()
		f.posts.On("GetByID", ctx, int64(3), int64(5)).Return(post, nil)
		f.posts.On("ToggleLike", ctx, int64(3), int64(5)).Return(true, int64(4), nil)

		resp, err := f.service.ToggleLike(ctx, appauth.Actor{UserID: 5, Role: models.RoleMember}, 3)
		require.NoError(t, err)
		assert.Equal(t, &dto.LikeResponse{Liked: true, LikeCount: 4}, resp)
		require.Equal(t, 1, f.notifier.count())
		assert.Equal(t, int64(7), f.notifier.sent[0].UserID)
		assert.Equal(t, models.NotificationPostLiked, f.notifier.sent[0].Type)
	})

	t.Run("unlike is silent", func(t *testing.T) {
		f := newFeedFixture()
		f.posts.On("GetByID", ctx, int64(3), int64(5)).Return(post, nil)
		f.posts.On("ToggleLike", ctx, int64(3), int64(5)).Return(false, int64(3), nil)

		_, err := f.service.ToggleLike(ctx, appauth.Actor{UserID: 5, Role: models.RoleMember}, 3)
		require.NoError(t, err)
		assert.Zero(t, f.notifier.count())
	})

	t.Run("own post is silent", func(t *testing.T) {
		f := newFeedFixture()
		f.posts.On("GetByID", ctx, int64(3), int64(7)).Return(post, nil)
		f.posts.On("ToggleLike", ctx, int64(3), int64(7)).Return(true, int64(1), nil)

		_, err := f.service.ToggleLike(ctx, appauth.Actor{UserID: 7, Role: models.RoleMember}, 3)
		require.NoError(t, err)
		assert.Zero(t, f.notifier.count())
	})
}

func TestFeed_CreatePostPublishesEvent(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture()
	f.posts.On("Create", ctx, mock.AnythingOfType("*models.Post")).Return(nil)
	f.posts.On("GetByID", ctx, int64(100), int64(5)).Return(&models.Post{ID: 100, AuthorID: 5, Status: models.PostStatusPublished}, nil)

	post, err := f.service.CreatePost(ctx, appauth.Actor{UserID: 5, Role: models.RoleMember}, &dto.PostRequest{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), post.ID)
	assert.Equal(t, []string{websocket.FeedTopic + " " + websocket.EventPostCreated}, f.publisher.types())
}

func TestFeed_DeleteCommentRequiresOwner(t *testing.T) {
	ctx := context.Background()
	f := newFeedFixture()
	f.comments.On("GetByID", ctx, int64(8)).Return(&models.Comment{ID: 8, AuthorID: 7}, nil)

	err := f.service.DeleteComment(ctx, appauth.Actor{UserID: 5, Role: models.RoleMember}, 8)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	f.comments.On("Delete", ctx, int64(8)).Return(nil)
	assert.NoError(t, f.service.DeleteComment(ctx, appauth.Actor{UserID: 1, Role: models.RoleAdmin}, 8))
}

func TestFeed_Moderate(t *testing.T) {
	ctx := context.Background()
	admin := appauth.Actor{UserID: 1, Role: models.RoleAdmin}

	t.Run("hide", func(t *testing.T) {
		f := newFeedFixture()
		f.posts.On("SetStatus", ctx, []int64{1, 2}, models.PostStatusHidden).Return(int64(2), nil)

		resp, err := f.service.Moderate(ctx, admin, &dto.ModerationRequest{PostIDs: []int64{1, 2}, Action: ModerationHide})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Affected)
		assert.Len(t, f.publisher.types(), 2)
	})

	t.Run("delete", func(t *testing.T) {
		f := newFeedFixture()
		f.posts.On("DeleteMany", ctx, []int64{4}).Return(int64(1), nil)

		resp, err := f.service.Moderate(ctx, admin, &dto.ModerationRequest{PostIDs: []int64{4}, Action: ModerationDelete})
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.Affected)
	})

	t.Run("publish emits nothing", func(t *testing.T) {
		f := newFeedFixture()
		f.posts.On("SetStatus", ctx, []int64{4}, models.PostStatusPublished).Return(int64(1), nil)

		_, err := f.service.Moderate(ctx, admin, &dto.ModerationRequest{PostIDs: []int64{4}, Action: ModerationPublish})
		require.NoError(t, err)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("unknown action", func(t *testing.T) {
		f := newFeedFixture()
		_, err := f.service.Moderate(ctx, admin, &dto.ModerationRequest{PostIDs: []int64{4}, Action: "archive"})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}
