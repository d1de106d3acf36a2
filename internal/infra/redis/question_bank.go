package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CachedBank caches category content in Redis and falls back to a source bank on cache miss.
// Each category is stored as JSON: SET quiz:category:{name} [{prompt,choices,answer}...]
type CachedBank struct {
	client *redis.Client
	source app.QuestionBank
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCachedBank(client *redis.Client, source app.QuestionBank, ttl time.Duration) *CachedBank {
	return &CachedBank{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *CachedBank) QuestionsFor(ctx context.Context, category string) ([]domain.Question, error) {
	if questions, ok := b.fromCache(ctx, category); ok {
		return questions, nil
	}

	result, err, _ := b.sf.Do(category, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := b.fromCache(ctx, category); ok {
			return questions, nil
		}

		questions, err := b.source.QuestionsFor(ctx, category)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(questions)
		if err != nil {
			return nil, fmt.Errorf("marshal category: %w", err)
		}
		// best-effort fill; a failed write only costs the next caller a reload
		_ = b.client.Set(ctx, b.key(category), data, b.ttlWithJitter()).Err()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return app.CloneQuestions(result.([]domain.Question)), nil
}

func (b *CachedBank) Categories(ctx context.Context) ([]string, error) {
	return b.source.Categories(ctx)
}

// Invalidate drops a cached category so the next read goes to the source.
func (b *CachedBank) Invalidate(ctx context.Context, category string) error {
	return b.client.Del(ctx, b.key(category)).Err()
}

func (b *CachedBank) fromCache(ctx context.Context, category string) ([]domain.Question, bool) {
	data, err := b.client.Get(ctx, b.key(category)).Bytes()
	if err != nil {
		// redis.Nil is a plain miss; other errors degrade to the source bank
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (b *CachedBank) key(category string) string {
	return "quiz:category:" + category
}

func (b *CachedBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	b.rndMu.Lock()
	defer b.rndMu.Unlock()
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
