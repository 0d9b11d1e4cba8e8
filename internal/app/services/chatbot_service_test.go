package services

import (
	"context"
	"testing"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFAQRepo struct{ mock.Mock }

func (m *mockFAQRepo) Create(ctx context.Context, faq *models.ChatbotFAQ) error {
	return m.Called(ctx, faq).Error(0)
}

func (m *mockFAQRepo) GetByID(ctx context.Context, id int64) (*models.ChatbotFAQ, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*models.ChatbotFAQ)
	return f, args.Error(1)
}

func (m *mockFAQRepo) Update(ctx context.Context, faq *models.ChatbotFAQ) error {
	return m.Called(ctx, faq).Error(0)
}

func (m *mockFAQRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockFAQRepo) List(ctx context.Context, activeOnly bool) ([]*models.ChatbotFAQ, error) {
	args := m.Called(ctx, activeOnly)
	f, _ := args.Get(0).([]*models.ChatbotFAQ)
	return f, args.Error(1)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"donate", "campaign", "2026"}, tokenize("How do I DONATE to the campaign, 2026?"))
	assert.Empty(t, tokenize("what is it?"))
	assert.Empty(t, tokenize(""))
}

func TestBestMatch(t *testing.T) {
	faqs := []*models.ChatbotFAQ{
		{ID: 1, Question: "How do I donate?", Keywords: []string{"donate", "payment"}, IsActive: true},
		{ID: 2, Question: "When is the next event?", Keywords: []string{"event", "meetup"}, IsActive: true},
		{ID: 3, Question: "Can I donate by cheque?", Keywords: []string{"cheque"}, IsActive: true},
		{ID: 4, Question: "Event schedule", Keywords: []string{"event"}, Priority: 5, IsActive: true},
		{ID: 5, Question: "Old donation policy", Keywords: []string{"donate", "payment", "cheque"}, IsActive: false},
	}

	tests := []struct {
		name     string
		question string
		wantID   int64
	}{
		{name: "keyword beats question text", question: "donate", wantID: 1},
		{name: "extra keyword wins", question: "donate by cheque", wantID: 3},
		{name: "tie goes to priority", question: "event", wantID: 4},
		{name: "question words count", question: "next meetup", wantID: 2},
		{name: "inactive entries ignored", question: "payment", wantID: 1},
		{name: "no overlap", question: "volunteer hours", wantID: 0},
		{name: "only stop words", question: "what is it", wantID: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bestMatch(tt.question, faqs)
			if tt.wantID == 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestBestMatchTieGoesToLowerID(t *testing.T) {
	faqs := []*models.ChatbotFAQ{
		{ID: 9, Question: "Volunteer", Keywords: []string{"volunteer"}, IsActive: true},
		{ID: 4, Question: "Volunteer", Keywords: []string{"volunteer"}, IsActive: true},
	}
	got := bestMatch("volunteer", faqs)
	require.NotNil(t, got)
	assert.Equal(t, int64(4), got.ID)
}

func TestChatbotAsk(t *testing.T) {
	ctx := context.Background()
	repo, c := new(mockFAQRepo), newMemoryCache()
	repo.On("List", ctx, true).Return([]*models.ChatbotFAQ{
		{ID: 1, Question: "How do I donate?", Answer: "Open a campaign and tap Donate.", Keywords: []string{"donate"}, IsActive: true},
	}, nil).Once()
	s := NewChatbotService(repo, c, zerolog.Nop())

	resp, err := s.Ask(ctx, "how can I donate")
	require.NoError(t, err)
	assert.True(t, resp.Matched)
	assert.Equal(t, "Open a campaign and tap Donate.", resp.Answer)
	require.NotNil(t, resp.FAQID)
	assert.Equal(t, int64(1), *resp.FAQID)

	resp, err = s.Ask(ctx, "parking")
	require.NoError(t, err)
	assert.False(t, resp.Matched)
	assert.Equal(t, FallbackAnswer, resp.Answer)

	repo.AssertNumberOfCalls(t, "List", 1)
}

func TestChatbotWritesInvalidateCache(t *testing.T) {
	ctx := context.Background()
	repo, c := new(mockFAQRepo), newMemoryCache()
	require.NoError(t, c.SetJSON(ctx, faqCacheKey, []*models.ChatbotFAQ{}))
	repo.On("Create", ctx, mock.MatchedBy(func(f *models.ChatbotFAQ) bool {
		return assert.ObjectsAreEqual([]string{"donate", "upi"}, f.Keywords) && f.IsActive
	})).Return(nil)

	_, err := NewChatbotService(repo, c, zerolog.Nop()).Create(ctx, &dto.FAQRequest{
		Question: "Can I pay by UPI?",
		Answer:   "Yes.",
		Keywords: []string{" Donate", "UPI", "donate", ""},
	})
	require.NoError(t, err)
	assert.False(t, c.has(faqCacheKey))
}
