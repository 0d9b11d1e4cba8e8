package services

import (
	"context"
	"strings"
	"unicode"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/cache"
	"github.com/rs/zerolog"
)

const (
	faqCacheKey = "chatbot:faq"

	// FallbackAnswer is returned when no entry matches
	FallbackAnswer = "Sorry, I don't have an answer for that yet. Please reach out to a community admin."

	keywordWeight  = 2
	questionWeight = 1
)

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "can": true, "do": true, "does": true,
	"for": true, "how": true, "i": true, "in": true, "is": true, "it": true, "me": true,
	"my": true, "of": true, "on": true, "or": true, "the": true, "to": true, "what": true,
	"when": true, "where": true, "who": true, "why": true, "with": true, "you": true,
}

// ChatbotService answers questions from the FAQ table
type ChatbotService struct {
	repo   repositories.IFAQRepository
	cache  cache.Cache
	logger zerolog.Logger
}

// NewChatbotService creates a new ChatbotService
func NewChatbotService(repo repositories.IFAQRepository, c cache.Cache, logger zerolog.Logger) *ChatbotService {
	return &ChatbotService{repo: repo, cache: c, logger: logger}
}

// tokenize lowercases text and splits it into words, dropping stop words
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 && !stopWords[f] {
			out = append(out, f)
		}
	}
	return out
}

// scoreFAQ weighs keyword hits above hits in the stored question text
func scoreFAQ(tokens []string, faq *models.ChatbotFAQ) int {
	keywords := make(map[string]bool)
	for _, k := range faq.Keywords {
		for _, t := range tokenize(k) {
			keywords[t] = true
		}
	}
	questionWords := make(map[string]bool)
	for _, t := range tokenize(faq.Question) {
		questionWords[t] = true
	}

	score := 0
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		if keywords[t] {
			score += keywordWeight
		}
		if questionWords[t] {
			score += questionWeight
		}
	}
	return score
}

// bestMatch returns the highest scoring entry; ties go to the higher priority, then the lower id
func bestMatch(question string, faqs []*models.ChatbotFAQ) *models.ChatbotFAQ {
	tokens := tokenize(question)
	if len(tokens) == 0 {
		return nil
	}

	var best *models.ChatbotFAQ
	bestScore := 0
	for _, faq := range faqs {
		if !faq.IsActive {
			continue
		}
		score := scoreFAQ(tokens, faq)
		if score == 0 {
			continue
		}
		switch {
		case best == nil, score > bestScore:
		case score == bestScore && faq.Priority > best.Priority:
		case score == bestScore && faq.Priority == best.Priority && faq.ID < best.ID:
		default:
			continue
		}
		best, bestScore = faq, score
	}
	return best
}

// Ask answers a question with the best matching FAQ entry or the fallback answer
func (s *ChatbotService) Ask(ctx context.Context, question string) (*dto.AskResponse, error) {
	faqs, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	match := bestMatch(question, faqs)
	if match == nil {
		return &dto.AskResponse{Answer: FallbackAnswer}, nil
	}
	id := match.ID
	return &dto.AskResponse{Answer: match.Answer, Matched: true, FAQID: &id}, nil
}

// ListActive returns active entries by priority, cached
func (s *ChatbotService) ListActive(ctx context.Context) ([]*models.ChatbotFAQ, error) {
	var faqs []*models.ChatbotFAQ
	hit, err := s.cache.GetJSON(ctx, faqCacheKey, &faqs)
	if err != nil {
		s.logger.Warn().Err(err).Msg("FAQ cache read failed")
	}
	if hit {
		return faqs, nil
	}

	faqs, err = s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if faqs == nil {
		faqs = []*models.ChatbotFAQ{}
	}
	if err := s.cache.SetJSON(ctx, faqCacheKey, faqs); err != nil {
		s.logger.Warn().Err(err).Msg("FAQ cache write failed")
	}
	return faqs, nil
}

// ListAll lists every entry for admins
func (s *ChatbotService) ListAll(ctx context.Context) ([]*models.ChatbotFAQ, error) {
	faqs, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	if faqs == nil {
		faqs = []*models.ChatbotFAQ{}
	}
	return faqs, nil
}

func (s *ChatbotService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, faqCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("FAQ cache invalidation failed")
	}
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// Create adds an entry
func (s *ChatbotService) Create(ctx context.Context, req *dto.FAQRequest) (*models.ChatbotFAQ, error) {
	faq := &models.ChatbotFAQ{
		Question: req.Question,
		Answer:   req.Answer,
		Keywords: normalizeKeywords(req.Keywords),
		Priority: req.Priority,
		IsActive: boolOr(req.IsActive, true),
	}
	if err := s.repo.Create(ctx, faq); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return faq, nil
}

// Update replaces an entry
func (s *ChatbotService) Update(ctx context.Context, id int64, req *dto.FAQRequest) (*models.ChatbotFAQ, error) {
	faq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	faq.Question = req.Question
	faq.Answer = req.Answer
	faq.Keywords = normalizeKeywords(req.Keywords)
	faq.Priority = req.Priority
	faq.IsActive = boolOr(req.IsActive, faq.IsActive)
	if err := s.repo.Update(ctx, faq); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return faq, nil
}

// Delete removes an entry
func (s *ChatbotService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}
