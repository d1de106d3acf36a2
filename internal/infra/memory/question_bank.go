package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"

	"golang.org/x/sync/singleflight"
)

// StaticBank is a question bank backed by an in-memory map (useful for tests/demos and file banks).
type StaticBank struct {
	categories map[string][]domain.Question
}

// NewStaticBank validates every category before accepting it.
func NewStaticBank(categories map[string][]domain.Question) (*StaticBank, error) {
	copied := make(map[string][]domain.Question, len(categories))
	for name, questions := range categories {
		if err := app.ValidateQuestions(name, questions); err != nil {
			return nil, err
		}
		copied[name] = app.CloneQuestions(questions)
	}
	return &StaticBank{categories: copied}, nil
}

func (b *StaticBank) QuestionsFor(_ context.Context, category string) ([]domain.Question, error) {
	questions, ok := b.categories[category]
	if !ok {
		return nil, domain.ErrUnknownCategory
	}
	return app.CloneQuestions(questions), nil
}

func (b *StaticBank) Categories(context.Context) ([]string, error) {
	names := make([]string, 0, len(b.categories))
	for name := range b.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CachedBank caches categories with TTL to avoid repeated trips to a slower bank.
type CachedBank struct {
	source app.QuestionBank
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCategory
}

type cachedCategory struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewCachedBank(source app.QuestionBank, ttl time.Duration) *CachedBank {
	return &CachedBank{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCategory),
	}
}

func (c *CachedBank) QuestionsFor(ctx context.Context, category string) ([]domain.Question, error) {
	if questions, ok := c.lookup(category); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(category, func() (interface{}, error) {
		if questions, ok := c.lookup(category); ok {
			return questions, nil
		}

		questions, err := c.source.QuestionsFor(ctx, category)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[category] = cachedCategory{
			questions: questions,
			expiresAt: c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return app.CloneQuestions(result.([]domain.Question)), nil
}

// Categories is not cached: it is only read when a picker is rendered.
func (c *CachedBank) Categories(ctx context.Context) ([]string, error) {
	return c.source.Categories(ctx)
}

func (c *CachedBank) lookup(category string) ([]domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[category]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return app.CloneQuestions(entry.questions), true
}

func (c *CachedBank) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
