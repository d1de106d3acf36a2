package redis

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/infra/memory"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type idleTicker struct{}

func (idleTicker) C() <-chan time.Time { return nil }
func (idleTicker) Stop()               {}

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)

	session := app.NewSession(memory.NewDefaultBank(), app.NewSeededShuffler(1))
	if err := session.Begin(context.Background(), "science", 25); err != nil {
		t.Fatalf("begin: %v", err)
	}
	runner := app.NewRunner("s-1", session, func(time.Duration) app.Ticker { return idleTicker{} })
	defer runner.Stop()

	store.Put(runner)
	if !mr.Exists("quiz:session:s-1") {
		t.Fatalf("expected redis key to be set")
	}
	if got, _ := mr.Get("quiz:session:s-1"); got != "science" {
		t.Fatalf("marker = %q, want category", got)
	}
	if _, ok := store.Get("s-1"); !ok {
		t.Fatalf("expected local runner")
	}

	store.Delete("s-1")
	if mr.Exists("quiz:session:s-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if len(store.List()) != 0 {
		t.Fatalf("expected empty store")
	}
}

// stalledServer accepts connections and never answers.
func stalledServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	var (
		mu   sync.Mutex
		held []net.Conn
	)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			held = append(held, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range held {
			conn.Close()
		}
	})
	return ln.Addr().String()
}

func TestSessionStoreStalledRedisDoesNotBlockLookups(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:                  stalledServer(t),
		MaxRetries:            -1,
		ContextTimeoutEnabled: true,
	})
	defer client.Close()
	store := NewSessionStore(client, time.Minute).WithMarkerTimeout(400 * time.Millisecond)

	session := app.NewSession(memory.NewDefaultBank(), app.NewSeededShuffler(1))
	if err := session.Begin(context.Background(), "science", 25); err != nil {
		t.Fatalf("begin: %v", err)
	}
	runner := app.NewRunner("s-1", session, func(time.Duration) app.Ticker { return idleTicker{} })
	defer runner.Stop()

	putDone := make(chan struct{})
	go func() {
		defer close(putDone)
		store.Put(runner)
	}()

	// Put is parked on the marker write by now
	time.Sleep(50 * time.Millisecond)
	start := time.Now()
	store.List()
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("list waited %v behind a redis call", elapsed)
	}

	select {
	case <-putDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("put not bounded by the marker timeout")
	}
	start = time.Now()
	if _, ok := store.Get("s-1"); !ok {
		t.Fatalf("expected local runner despite redis failure")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("get took %v", elapsed)
	}
}
