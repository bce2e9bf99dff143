package session

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"

	"github.com/noodles-go/noodles/pkg/broadcast"
	"github.com/noodles-go/noodles/pkg/wire"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func marshalPayload(t *testing.T, v any) []byte {
	t.Helper()
	b, err := cbor.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestReadLoopDeliversDecodedEnvelope(t *testing.T) {
	var mu sync.Mutex
	var got []Envelope
	onMessage := func(e Envelope) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	}

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s := New("sess-1", conn, DefaultConfig(), testLogger(), onMessage, nil)
		s.Start()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	frame, err := wire.EncodeClient(wire.ClientMessage{
		Tag:     wire.TagIntroMessage,
		Payload: marshalPayload(t, wire.IntroMessagePayload{ClientName: "alice"}),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := client.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("got %d envelopes, want 1", len(got))
	}
	if got[0].Tag != wire.TagIntroMessage {
		t.Fatalf("tag = %v, want IntroMessage", got[0].Tag)
	}
	var intro wire.IntroMessagePayload
	if err := (wire.ClientMessage{Payload: got[0].Payload}).Decode(&intro); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if intro.ClientName != "alice" {
		t.Fatalf("client_name = %q, want alice", intro.ClientName)
	}
}

func TestEnqueueReturnsErrorOnOverflow(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	var s *Session
	ready := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		cfg := DefaultConfig()
		cfg.OutboundQueueSize = 1
		s = New("sess-1", conn, cfg, testLogger(), func(Envelope) {}, nil)
		close(ready)
		// Deliberately do not Start() the write loop so the queue never drains.
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()
	<-ready

	if err := s.Enqueue([]byte("one")); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := s.Enqueue([]byte("two")); err != ErrQueueOverflow {
		t.Fatalf("second enqueue error = %v, want ErrQueueOverflow", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	var s *Session
	ready := make(chan struct{})
	var closedCount int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s = New("sess-1", conn, DefaultConfig(), testLogger(), func(Envelope) {}, func(_ broadcast.SessionID, _ error) {
			mu.Lock()
			closedCount++
			mu.Unlock()
		})
		close(ready)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()
	<-ready

	s.Close()
	s.Close() // must not panic on double close

	mu.Lock()
	defer mu.Unlock()
	if closedCount != 1 {
		t.Fatalf("onClose called %d times, want 1", closedCount)
	}
}
