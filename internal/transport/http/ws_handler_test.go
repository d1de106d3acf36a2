package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wsEvent struct {
	View struct {
		Index         int    `json:"index"`
		Prompt        string `json:"prompt"`
		Remaining     int    `json:"remaining"`
		Score         int    `json:"score"`
		CorrectChoice string `json:"correctChoice"`
	} `json:"view"`
	Answer *struct {
		Outcome       string `json:"outcome"`
		CorrectChoice string `json:"correctChoice"`
		Score         int    `json:"score"`
	} `json:"answer"`
}

func TestWebSocketQuizFlow(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(NewRouter(f.service, quietLogger()))
	defer server.Close()

	conn := dial(t, server, "/ws?category=quiz&seconds=2")
	defer conn.Close()
	f.tickers.next(t)

	var ev wsEvent
	readEvent(t, conn, "question", &ev)
	if ev.View.Index != 0 || ev.View.Prompt != "2 + 2?" {
		t.Fatalf("unexpected first question %+v", ev.View)
	}
	if ev.View.CorrectChoice != "" {
		t.Fatalf("correct choice leaked before answering")
	}

	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"choice": "4"}})
	readEvent(t, conn, "answerResult", &ev)
	if ev.Answer == nil || ev.Answer.Outcome != "correct" || ev.Answer.Score != 1 {
		t.Fatalf("unexpected answer result %+v", ev.Answer)
	}

	// a second answer for the same question is refused
	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"choice": "3"}})
	if msg := readSkippingTicks(t, conn); msg.Type != "error" {
		t.Fatalf("expected error, got %s", msg.Type)
	}

	send(t, conn, map[string]any{"type": "next"})
	readEvent(t, conn, "question", &ev)
	if ev.View.Index != 1 || ev.View.Prompt != "Capital of France?" {
		t.Fatalf("unexpected second question %+v", ev.View)
	}

	// let the clock run out on the second question
	second := f.tickers.next(t)
	second.ch <- time.Now()
	second.ch <- time.Now()
	readEvent(t, conn, "timeout", &ev)
	if ev.Answer == nil || ev.Answer.Outcome != "timed_out" || ev.Answer.CorrectChoice != "Paris" {
		t.Fatalf("unexpected timeout %+v", ev.Answer)
	}

	send(t, conn, map[string]any{"type": "next"})
	msg := readSkippingTicks(t, conn)
	if msg.Type != "result" {
		t.Fatalf("expected result, got %s", msg.Type)
	}
	var result struct {
		Score     int  `json:"score"`
		Total     int  `json:"total"`
		Percent   int  `json:"percent"`
		IsNewBest bool `json:"isNewBest"`
		Celebrate bool `json:"celebrate"`
	}
	if err := json.Unmarshal(msg.Payload, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Score != 1 || result.Total != 2 || result.Percent != 50 || !result.IsNewBest || result.Celebrate {
		t.Fatalf("unexpected result %+v", result)
	}

	best, ok, _ := f.scores.Get(context.Background(), "quiz")
	if !ok || best != 1 {
		t.Fatalf("high score = %d ok=%v, want 1", best, ok)
	}
}

func TestWebSocketPipelinedLastAnswerPrecedesResult(t *testing.T) {
	for run := 0; run < 30; run++ {
		f := newFixture(t)
		server := httptest.NewServer(NewRouter(f.service, quietLogger()))
		conn := dial(t, server, "/ws?category=quiz&seconds=30")
		f.tickers.next(t)

		var ev wsEvent
		readEvent(t, conn, "question", &ev)
		send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"choice": "4"}})
		send(t, conn, map[string]any{"type": "next"})
		readEvent(t, conn, "answerResult", &ev)
		readEvent(t, conn, "question", &ev)

		// answer and leave the last question without waiting in between
		send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"choice": "Paris"}})
		send(t, conn, map[string]any{"type": "next"})

		var got []string
		for {
			var msg wsMessage
			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			if err := conn.ReadJSON(&msg); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					t.Fatalf("run %d: read: %v", run, err)
				}
				break
			}
			if msg.Type != "tick" {
				got = append(got, msg.Type)
			}
		}
		if len(got) != 2 || got[0] != "answerResult" || got[1] != "result" {
			t.Fatalf("run %d: messages after last answer = %v, want [answerResult result]", run, got)
		}

		conn.Close()
		server.Close()
	}
}

func TestWebSocketDisconnectAbandons(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(NewRouter(f.service, quietLogger()))
	defer server.Close()

	conn := dial(t, server, "/ws?category=quiz&seconds=5")
	f.tickers.next(t)
	var ev wsEvent
	readEvent(t, conn, "question", &ev)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(f.sessions.List()) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session still registered after disconnect")
}

func TestWebSocketRejectsPlaceholderCategory(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(NewRouter(f.service, quietLogger()))
	defer server.Close()

	conn := dial(t, server, "/ws?category=pick")
	defer conn.Close()

	msg := readSkippingTicks(t, conn)
	if msg.Type != "error" || !strings.Contains(string(msg.Payload), "pick a subject") {
		t.Fatalf("unexpected message %s %s", msg.Type, msg.Payload)
	}
}

func TestWebSocketRejectsBadSeconds(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(NewRouter(f.service, quietLogger()))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?category=quiz&seconds=-1"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %+v", resp)
	}
}

func dial(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readSkippingTicks(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	for {
		var msg wsMessage
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if msg.Type != "tick" {
			return msg
		}
	}
}

func readEvent(t *testing.T, conn *websocket.Conn, expect string, out *wsEvent) {
	t.Helper()
	msg := readSkippingTicks(t, conn)
	if msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%s)", expect, msg.Type, msg.Payload)
	}
	*out = wsEvent{}
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		t.Fatalf("decode %s: %v", expect, err)
	}
}
