package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"trivia-quiz/internal/domain"

	"github.com/redis/go-redis/v9"
)

// raiseScript stores ARGV[1] under KEYS[1] only when it beats the current value,
// so concurrent finishers can never lower a best score.
var raiseScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "-1")
local candidate = tonumber(ARGV[1])
if candidate > current then
	redis.call("SET", KEYS[1], ARGV[1])
	return 1
end
return 0
`)

// HighScoreStore keeps best scores as plain integers under quiz_high_{category}.
type HighScoreStore struct {
	client *redis.Client
}

func NewHighScoreStore(client *redis.Client) *HighScoreStore {
	return &HighScoreStore{client: client}
}

func (s *HighScoreStore) Get(ctx context.Context, category string) (int, bool, error) {
	raw, err := s.client.Get(ctx, domain.HighScoreKey(category)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get high score: %w", err)
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse high score %q: %w", raw, err)
	}
	return score, true, nil
}

func (s *HighScoreStore) Set(ctx context.Context, category string, score int) error {
	if score < 0 {
		return fmt.Errorf("negative high score %d", score)
	}
	if err := raiseScript.Run(ctx, s.client, []string{domain.HighScoreKey(category)}, score).Err(); err != nil {
		return fmt.Errorf("set high score: %w", err)
	}
	return nil
}
