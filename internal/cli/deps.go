package cli

import (
	"context"
	"fmt"
	"time"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/config"
	"trivia-quiz/internal/infra/file"
	"trivia-quiz/internal/infra/memory"
	pgstore "trivia-quiz/internal/infra/postgres"
	rediscache "trivia-quiz/internal/infra/redis"
	sqlitestore "trivia-quiz/internal/infra/sqlite"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type role int

const (
	// roleServer prefers shared stores so several instances agree on high scores.
	roleServer role = iota
	// roleTerminal prefers the local SQLite file.
	roleTerminal
)

type deps struct {
	bank     app.QuestionBank
	scores   app.HighScoreStore
	sessions app.SessionRepository
	closers  []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func buildDeps(ctx context.Context, cfg config.Config, log logrus.FieldLogger, r role) (*deps, error) {
	d := &deps{}
	ok := false
	defer func() {
		if !ok {
			d.Close()
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			// per-call deadlines bound the session liveness writes
			ContextTimeoutEnabled: true,
		})
		d.closers = append(d.closers, func() { _ = redisClient.Close() })
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		d.closers = append(d.closers, pool.Close)
	}

	var base app.QuestionBank
	switch {
	case pool != nil:
		base = pgstore.NewQuestionBank(pool)
		log.Info("questions from postgres")
	case cfg.Quiz.BankFile != "":
		fileBank, err := file.LoadBank(cfg.Quiz.BankFile)
		if err != nil {
			return nil, err
		}
		base = fileBank
		log.WithField("file", cfg.Quiz.BankFile).Info("questions from file")
	default:
		base = memory.NewDefaultBank()
		log.Info("built-in questions")
	}

	bankTTL := config.TTLDuration(cfg.Quiz.BankTTL, 10*time.Minute)
	switch {
	case redisClient != nil:
		d.bank = rediscache.NewCachedBank(redisClient, base, bankTTL)
	case pool != nil:
		d.bank = memory.NewCachedBank(base, bankTTL)
	default:
		d.bank = base
	}

	scores, err := highScores(cfg, r, redisClient, d)
	if err != nil {
		return nil, err
	}
	d.scores = scores

	if redisClient != nil && r == roleServer {
		d.sessions = rediscache.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	} else {
		d.sessions = memory.NewSessionStore()
	}

	ok = true
	return d, nil
}

func highScores(cfg config.Config, r role, redisClient *redis.Client, d *deps) (app.HighScoreStore, error) {
	openPostgres := func() (app.HighScoreStore, error) {
		db := pgstore.OpenDB(cfg.Postgres.URL)
		d.closers = append(d.closers, func() { _ = db.Close() })
		return pgstore.NewHighScoreStore(db), nil
	}
	openSQLite := func() (app.HighScoreStore, error) {
		store, err := sqlitestore.NewHighScoreStore(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite %s: %w", cfg.SQLite.Path, err)
		}
		d.closers = append(d.closers, func() { _ = store.Close() })
		return store, nil
	}

	type candidate struct {
		enabled bool
		open    func() (app.HighScoreStore, error)
	}
	redisCandidate := candidate{redisClient != nil, func() (app.HighScoreStore, error) {
		return rediscache.NewHighScoreStore(redisClient), nil
	}}
	pgCandidate := candidate{cfg.Postgres.URL != "", openPostgres}
	sqliteCandidate := candidate{cfg.SQLite.Path != "", openSQLite}

	order := []candidate{pgCandidate, redisCandidate, sqliteCandidate}
	if r == roleTerminal {
		order = []candidate{sqliteCandidate, redisCandidate, pgCandidate}
	}
	for _, c := range order {
		if c.enabled {
			return c.open()
		}
	}
	return memory.NewHighScoreStore(), nil
}
