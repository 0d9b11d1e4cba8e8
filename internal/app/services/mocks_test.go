package services

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/email"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateAccount(ctx context.Context, user *models.User, profile *models.Profile, role models.Role) error {
	args := m.Called(ctx, user, profile, role)
	if args.Error(0) == nil {
		user.ID = 42
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return m.Called(ctx, userID, passwordHash).Error(0)
}

func (m *mockUserRepo) MarkEmailVerified(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserRepo) SetActive(ctx context.Context, userID int64, active bool) error {
	return m.Called(ctx, userID, active).Error(0)
}

func (m *mockUserRepo) GetRole(ctx context.Context, userID int64) (models.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Role), args.Error(1)
}

func (m *mockUserRepo) GetAccess(ctx context.Context, userID int64) (models.Role, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Role), args.Bool(1), args.Error(2)
}

func (m *mockUserRepo) SetRole(ctx context.Context, userID int64, role models.Role, assignedBy int64) error {
	return m.Called(ctx, userID, role, assignedBy).Error(0)
}

func (m *mockUserRepo) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*models.Profile)
	return p, args.Error(1)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) error {
	return m.Called(ctx, userID, update).Error(0)
}

func (m *mockUserRepo) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	return m.Called(ctx, userID, avatarURL).Error(0)
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter, offset uint64, limit int) ([]*models.User, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) GetSummaries(ctx context.Context, ids []int64) (map[int64]*models.UserSummary, error) {
	args := m.Called(ctx, ids)
	s, _ := args.Get(0).(map[int64]*models.UserSummary)
	return s, args.Error(1)
}

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	return m.Called(ctx, token, userID, expiryDate).Error(0)
}

func (m *mockTokenRepo) ConsumeToken(ctx context.Context, token string) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokenRepo) RevokeToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockTokenRepo) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type mockUserTokenRepo struct{ mock.Mock }

func (m *mockUserTokenRepo) Create(ctx context.Context, token *models.UserToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockUserTokenRepo) GetByToken(ctx context.Context, token string, purpose models.TokenPurpose) (*models.UserToken, error) {
	args := m.Called(ctx, token, purpose)
	t, _ := args.Get(0).(*models.UserToken)
	return t, args.Error(1)
}

func (m *mockUserTokenRepo) MarkUsed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserTokenRepo) InvalidateForUser(ctx context.Context, userID int64, purpose models.TokenPurpose) error {
	return m.Called(ctx, userID, purpose).Error(0)
}

type mockTwoFactorRepo struct{ mock.Mock }

func (m *mockTwoFactorRepo) Get(ctx context.Context, userID int64) (*models.TwoFactor, error) {
	args := m.Called(ctx, userID)
	tf, _ := args.Get(0).(*models.TwoFactor)
	return tf, args.Error(1)
}

func (m *mockTwoFactorRepo) SavePending(ctx context.Context, userID int64, secretRef string) error {
	return m.Called(ctx, userID, secretRef).Error(0)
}

func (m *mockTwoFactorRepo) Enable(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockTwoFactorRepo) Delete(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type mockPostRepo struct{ mock.Mock }

func (m *mockPostRepo) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	if args.Error(0) == nil {
		post.ID = 100
	}
	return args.Error(0)
}

func (m *mockPostRepo) GetByID(ctx context.Context, id, viewerID int64) (*models.Post, error) {
	args := m.Called(ctx, id, viewerID)
	p, _ := args.Get(0).(*models.Post)
	return p, args.Error(1)
}

func (m *mockPostRepo) Update(ctx context.Context, id int64, content string, imageURL *string) error {
	return m.Called(ctx, id, content, imageURL).Error(0)
}

func (m *mockPostRepo) SetImage(ctx context.Context, id int64, imageURL string) error {
	return m.Called(ctx, id, imageURL).Error(0)
}

func (m *mockPostRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPostRepo) List(ctx context.Context, filter models.PostFilter, offset uint64, limit int) ([]*models.Post, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	posts, _ := args.Get(0).([]*models.Post)
	return posts, args.Get(1).(int64), args.Error(2)
}

func (m *mockPostRepo) ToggleLike(ctx context.Context, postID, userID int64) (bool, int64, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *mockPostRepo) SetStatus(ctx context.Context, ids []int64, status models.PostStatus) (int64, error) {
	args := m.Called(ctx, ids, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPostRepo) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type mockCommentRepo struct{ mock.Mock }

func (m *mockCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *mockCommentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Comment)
	return c, args.Error(1)
}

func (m *mockCommentRepo) ListByPost(ctx context.Context, postID int64, offset uint64, limit int) ([]*models.Comment, int64, error) {
	args := m.Called(ctx, postID, offset, limit)
	c, _ := args.Get(0).([]*models.Comment)
	return c, args.Get(1).(int64), args.Error(2)
}

func (m *mockCommentRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockCampaignRepo struct{ mock.Mock }

func (m *mockCampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCampaignRepo) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Campaign)
	return c, args.Error(1)
}

func (m *mockCampaignRepo) Update(ctx context.Context, c *models.Campaign) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCampaignRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCampaignRepo) List(ctx context.Context, activeOnly bool, offset uint64, limit int) ([]*models.Campaign, int64, error) {
	args := m.Called(ctx, activeOnly, offset, limit)
	c, _ := args.Get(0).([]*models.Campaign)
	return c, args.Get(1).(int64), args.Error(2)
}

type mockDonationRepo struct{ mock.Mock }

func (m *mockDonationRepo) CreatePending(ctx context.Context, d *models.Donation) (*models.PaymentTransaction, error) {
	args := m.Called(ctx, d)
	if args.Error(1) == nil {
		d.ID = 7
	}
	t, _ := args.Get(0).(*models.PaymentTransaction)
	return t, args.Error(1)
}

func (m *mockDonationRepo) SetProviderOrder(ctx context.Context, donationID int64, orderID string) error {
	return m.Called(ctx, donationID, orderID).Error(0)
}

func (m *mockDonationRepo) GetByID(ctx context.Context, id int64) (*models.Donation, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*models.Donation)
	return d, args.Error(1)
}

func (m *mockDonationRepo) GetTransaction(ctx context.Context, donationID int64) (*models.PaymentTransaction, error) {
	args := m.Called(ctx, donationID)
	t, _ := args.Get(0).(*models.PaymentTransaction)
	return t, args.Error(1)
}

func (m *mockDonationRepo) MarkFailed(ctx context.Context, donationID int64, reason string) error {
	return m.Called(ctx, donationID, reason).Error(0)
}

func (m *mockDonationRepo) Complete(ctx context.Context, donationID int64, paymentID string) (*models.Donation, bool, error) {
	args := m.Called(ctx, donationID, paymentID)
	d, _ := args.Get(0).(*models.Donation)
	return d, args.Bool(1), args.Error(2)
}

func (m *mockDonationRepo) List(ctx context.Context, filter models.DonationFilter, offset uint64, limit int) ([]*models.Donation, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	d, _ := args.Get(0).([]*models.Donation)
	return d, args.Get(1).(int64), args.Error(2)
}

type mockAIUsageRepo struct{ mock.Mock }

func (m *mockAIUsageRepo) Reserve(ctx context.Context, u *models.AIUsage, since time.Time, limit int) error {
	args := m.Called(ctx, u, since, limit)
	if args.Error(0) == nil {
		u.ID = 55
		u.Status = models.AIUsagePending
	}
	return args.Error(0)
}

func (m *mockAIUsageRepo) Finish(ctx context.Context, u *models.AIUsage) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockAIUsageRepo) CountSuccessSince(ctx context.Context, userID int64, since time.Time) (int64, error) {
	args := m.Called(ctx, userID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAIUsageRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.AIUsage, error) {
	args := m.Called(ctx, userID, limit)
	u, _ := args.Get(0).([]*models.AIUsage)
	return u, args.Error(1)
}

func (m *mockAIUsageRepo) List(ctx context.Context, offset uint64, limit int) ([]*models.AIUsage, int64, error) {
	args := m.Called(ctx, offset, limit)
	u, _ := args.Get(0).([]*models.AIUsage)
	return u, args.Get(1).(int64), args.Error(2)
}

type mockChatRepo struct{ mock.Mock }

func (m *mockChatRepo) CreateGroupRoom(ctx context.Context, room *models.ChatRoom, ownerID int64, memberIDs []int64) error {
	args := m.Called(ctx, room, ownerID, memberIDs)
	if args.Error(0) == nil {
		room.ID = 5
		room.Type = models.RoomTypeGroup
	}
	return args.Error(0)
}

func (m *mockChatRepo) GetOrCreateDirectRoom(ctx context.Context, userA, userB int64) (*models.ChatRoom, bool, error) {
	args := m.Called(ctx, userA, userB)
	r, _ := args.Get(0).(*models.ChatRoom)
	return r, args.Bool(1), args.Error(2)
}

func (m *mockChatRepo) GetRoom(ctx context.Context, roomID int64) (*models.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	r, _ := args.Get(0).(*models.ChatRoom)
	return r, args.Error(1)
}

func (m *mockChatRepo) RenameRoom(ctx context.Context, roomID int64, name string) error {
	return m.Called(ctx, roomID, name).Error(0)
}

func (m *mockChatRepo) TouchRoom(ctx context.Context, roomID int64) error {
	return m.Called(ctx, roomID).Error(0)
}

func (m *mockChatRepo) ListRoomsForUser(ctx context.Context, userID int64) ([]*models.ChatRoom, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).([]*models.ChatRoom)
	return r, args.Error(1)
}

func (m *mockChatRepo) GetParticipant(ctx context.Context, roomID, userID int64) (*models.ChatParticipant, error) {
	args := m.Called(ctx, roomID, userID)
	p, _ := args.Get(0).(*models.ChatParticipant)
	return p, args.Error(1)
}

func (m *mockChatRepo) ListParticipants(ctx context.Context, roomID int64) ([]*models.ChatParticipant, error) {
	args := m.Called(ctx, roomID)
	p, _ := args.Get(0).([]*models.ChatParticipant)
	return p, args.Error(1)
}

func (m *mockChatRepo) ParticipantIDs(ctx context.Context, roomID int64) ([]int64, error) {
	args := m.Called(ctx, roomID)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *mockChatRepo) AddParticipants(ctx context.Context, roomID int64, userIDs []int64) error {
	return m.Called(ctx, roomID, userIDs).Error(0)
}

func (m *mockChatRepo) RemoveParticipant(ctx context.Context, roomID, userID int64) error {
	return m.Called(ctx, roomID, userID).Error(0)
}

type mockMessageRepo struct{ mock.Mock }

func (m *mockMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	if args.Error(0) == nil {
		msg.ID = 900
	}
	return args.Error(0)
}

func (m *mockMessageRepo) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	args := m.Called(ctx, id)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *mockMessageRepo) ListByRoom(ctx context.Context, roomID int64, beforeID *int64, limit int) ([]*models.Message, error) {
	args := m.Called(ctx, roomID, beforeID, limit)
	msgs, _ := args.Get(0).([]*models.Message)
	return msgs, args.Error(1)
}

func (m *mockMessageRepo) ListPinned(ctx context.Context, roomID int64) ([]*models.Message, error) {
	args := m.Called(ctx, roomID)
	msgs, _ := args.Get(0).([]*models.Message)
	return msgs, args.Error(1)
}

func (m *mockMessageRepo) UpdateContent(ctx context.Context, id int64, content string) (*time.Time, error) {
	args := m.Called(ctx, id, content)
	t, _ := args.Get(0).(*time.Time)
	return t, args.Error(1)
}

func (m *mockMessageRepo) SoftDelete(ctx context.Context, id int64) (*time.Time, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*time.Time)
	return t, args.Error(1)
}

func (m *mockMessageRepo) SetPinned(ctx context.Context, id int64, pinned bool, by int64) error {
	return m.Called(ctx, id, pinned, by).Error(0)
}

func (m *mockMessageRepo) ToggleReaction(ctx context.Context, messageID, userID int64, emoji string) (bool, error) {
	args := m.Called(ctx, messageID, userID, emoji)
	return args.Bool(0), args.Error(1)
}

func (m *mockMessageRepo) ReactionSummaries(ctx context.Context, messageIDs []int64) (map[int64][]models.ReactionSummary, error) {
	args := m.Called(ctx, messageIDs)
	s, _ := args.Get(0).(map[int64][]models.ReactionSummary)
	return s, args.Error(1)
}

func (m *mockMessageRepo) AdvanceReadMarker(ctx context.Context, roomID, userID, messageID int64) (*models.ReadStatus, error) {
	args := m.Called(ctx, roomID, userID, messageID)
	rs, _ := args.Get(0).(*models.ReadStatus)
	return rs, args.Error(1)
}

// fakeInvoker answers function calls from per-name handlers
type fakeInvoker struct {
	mu       sync.Mutex
	calls    []string
	handlers map[string]func(request, out any) error
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{handlers: make(map[string]func(request, out any) error)}
}

func (f *fakeInvoker) on(name string, h func(request, out any) error) *fakeInvoker {
	f.handlers[name] = h
	return f
}

func (f *fakeInvoker) Invoke(_ context.Context, name string, request any, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	h := f.handlers[name]
	f.mu.Unlock()
	if h == nil {
		panic("unexpected function call: " + name)
	}
	return h(request, out)
}

func (f *fakeInvoker) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

type sentMail struct {
	Kind    string
	To      string
	Token   string
	Receipt email.Receipt
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) record(m sentMail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeMailer) SendVerificationEmail(_ context.Context, to, _, token string) error {
	return f.record(sentMail{Kind: "verification", To: to, Token: token})
}

func (f *fakeMailer) SendPasswordResetEmail(_ context.Context, to, _, token string) error {
	return f.record(sentMail{Kind: "reset", To: to, Token: token})
}

func (f *fakeMailer) SendWelcomeEmail(_ context.Context, to, _ string) error {
	return f.record(sentMail{Kind: "welcome", To: to})
}

func (f *fakeMailer) SendDonationReceipt(_ context.Context, to string, r email.Receipt) error {
	return f.record(sentMail{Kind: "receipt", To: to, Receipt: r})
}

func (f *fakeMailer) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Kind)
	}
	return out
}

type publishedEvent struct {
	Topic string
	Type  string
	Data  any
}

type fakePublisher struct {
	mu        sync.Mutex
	events    []publishedEvent
	evictions []string
}

func (f *fakePublisher) EvictTopic(_ context.Context, userID int64, topic string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evictions = append(f.evictions, topic+" "+strconv.FormatInt(userID, 10))
}

func (f *fakePublisher) evicted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.evictions...)
}

func (f *fakePublisher) Publish(_ context.Context, topic, eventType string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Topic: topic, Type: eventType, Data: data})
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Topic+" "+e.Type)
	}
	return out
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []*models.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n *models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// memoryCache is an in-process cache.Cache
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
	gets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	bs, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(bs, dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any) error {
	bs, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = bs
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

type mockEventRepo struct{ mock.Mock }

func (m *mockEventRepo) Create(ctx context.Context, e *models.Event) error {
	args := m.Called(ctx, e)
	if args.Error(0) == nil {
		e.ID = 30
	}
	return args.Error(0)
}

func (m *mockEventRepo) GetByID(ctx context.Context, id, viewerID int64) (*models.Event, error) {
	args := m.Called(ctx, id, viewerID)
	e, _ := args.Get(0).(*models.Event)
	return e, args.Error(1)
}

func (m *mockEventRepo) Update(ctx context.Context, e *models.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEventRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockEventRepo) List(ctx context.Context, upcomingFrom *time.Time, viewerID int64, offset uint64, limit int) ([]*models.Event, int64, error) {
	args := m.Called(ctx, upcomingFrom, viewerID, offset, limit)
	e, _ := args.Get(0).([]*models.Event)
	return e, args.Get(1).(int64), args.Error(2)
}

func (m *mockEventRepo) SetRSVP(ctx context.Context, eventID, userID int64, status models.RSVPStatus) error {
	return m.Called(ctx, eventID, userID, status).Error(0)
}

func (m *mockEventRepo) DeleteRSVP(ctx context.Context, eventID, userID int64) error {
	return m.Called(ctx, eventID, userID).Error(0)
}

func (m *mockEventRepo) ListRSVPs(ctx context.Context, eventID int64) ([]*models.EventRSVP, error) {
	args := m.Called(ctx, eventID)
	r, _ := args.Get(0).([]*models.EventRSVP)
	return r, args.Error(1)
}

func (m *mockEventRepo) UpsertAttendance(ctx context.Context, eventID, markedBy int64, entries []models.Attendance) error {
	return m.Called(ctx, eventID, markedBy, entries).Error(0)
}

func (m *mockEventRepo) ListAttendance(ctx context.Context, eventID int64) ([]*models.Attendance, error) {
	args := m.Called(ctx, eventID)
	a, _ := args.Get(0).([]*models.Attendance)
	return a, args.Error(1)
}

func (m *mockEventRepo) ListAttendanceByUser(ctx context.Context, userID int64) ([]*models.Attendance, error) {
	args := m.Called(ctx, userID)
	a, _ := args.Get(0).([]*models.Attendance)
	return a, args.Error(1)
}

type mockTaskRepo struct{ mock.Mock }

func (m *mockTaskRepo) Create(ctx context.Context, t *models.Task) error {
	args := m.Called(ctx, t)
	if args.Error(0) == nil {
		t.ID = 60
		t.Status = models.TaskTodo
	}
	return args.Error(0)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*models.Task)
	return t, args.Error(1)
}

func (m *mockTaskRepo) UpdateStatus(ctx context.Context, id int64, status models.TaskStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTaskRepo) List(ctx context.Context, filter models.TaskFilter, offset uint64, limit int) ([]*models.Task, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	t, _ := args.Get(0).([]*models.Task)
	return t, args.Get(1).(int64), args.Error(2)
}

type mockNotificationRepo struct{ mock.Mock }

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	if args.Error(0) == nil {
		n.ID = 77
	}
	return args.Error(0)
}

func (m *mockNotificationRepo) List(ctx context.Context, userID int64, unreadOnly bool, offset uint64, limit int) ([]*models.Notification, int64, error) {
	args := m.Called(ctx, userID, unreadOnly, offset, limit)
	n, _ := args.Get(0).([]*models.Notification)
	return n, args.Get(1).(int64), args.Error(2)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID int64) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id, userID int64) error {
	return m.Called(ctx, id, userID).Error(0)
}

type mockErrorLogRepo struct{ mock.Mock }

func (m *mockErrorLogRepo) Create(ctx context.Context, e *models.ErrorLog) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockErrorLogRepo) List(ctx context.Context, source *models.ErrorSource, severity string, offset uint64, limit int) ([]*models.ErrorLog, int64, error) {
	args := m.Called(ctx, source, severity, offset, limit)
	e, _ := args.Get(0).([]*models.ErrorLog)
	return e, args.Get(1).(int64), args.Error(2)
}

func (m *mockErrorLogRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// fakeReporter records reported errors
type fakeReporter struct {
	mu       sync.Mutex
	reported []error
}

func (f *fakeReporter) Report(err error, _ *int64, _ map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reported = append(f.reported, err)
}

func (f *fakeReporter) Close() {}

func (f *fakeReporter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reported)
}
