package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"

	"github.com/noodles-go/noodles/pkg/broadcast"
	"github.com/noodles-go/noodles/pkg/wire"
)

// ErrQueueOverflow is returned by Enqueue when the outbound FIFO is full.
// The caller (pkg/broadcast) treats this as a signal to tear the session
// down.
var ErrQueueOverflow = errors.New("session: outbound queue overflow")

// Envelope is one decoded inbound frame handed to the server's shared
// core loop, which applies inbound frames serially.
type Envelope struct {
	SessionID broadcast.SessionID
	Tag       wire.ClientTag
	Payload   cbor.RawMessage
}

// Session owns one websocket connection's read and write transport
// loops. It holds no scene-graph or dispatch state of its own; every
// decoded Envelope is forwarded to onMessage, and every decision about
// what it means is made by the server core.
type Session struct {
	id   broadcast.SessionID
	conn *websocket.Conn
	cfg  Config
	log  *slog.Logger

	outbound chan []byte
	done     chan struct{}
	closeOnce sync.Once

	onMessage func(Envelope)
	onClose   func(broadcast.SessionID, error)

	mu   sync.Mutex
	name string
}

// New constructs a Session around an already-upgraded websocket
// connection. onMessage is called from the read goroutine for every
// decoded inbound message, in frame order; it must not block for long —
// it is expected to simply enqueue onto the core's channel. onClose is
// called at most once, when the session
// transitions to fully closed, with a non-nil error only if the closure
// was triggered by a failure rather than a normal shutdown.
func New(id broadcast.SessionID, conn *websocket.Conn, cfg Config, log *slog.Logger, onMessage func(Envelope), onClose func(broadcast.SessionID, error)) *Session {
	conn.SetReadLimit(cfg.MaxFrameBytes)
	return &Session{
		id:        id,
		conn:      conn,
		cfg:       cfg,
		log:       log.With("session_id", string(id)),
		outbound:  make(chan []byte, cfg.OutboundQueueSize),
		done:      make(chan struct{}),
		onMessage: onMessage,
		onClose:   onClose,
	}
}

// ID returns the session's identifier.
func (s *Session) ID() broadcast.SessionID { return s.id }

// SetName records the client-supplied name from a valid IntroMessage.
// Safe for concurrent use; the core loop is the only writer in practice.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

// Name returns the client-supplied name, or "" before IntroMessage.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Start launches the read and write loops. It returns immediately; the
// loops run until the connection fails or Close is called.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Enqueue implements broadcast.Outbound: a non-blocking append to the
// session's outbound FIFO.
func (s *Session) Enqueue(frame []byte) error {
	select {
	case s.outbound <- frame:
		return nil
	default:
		return ErrQueueOverflow
	}
}

// Close tears the session down: it is idempotent and safe to call from
// any goroutine (the read loop on a transport error, the write loop on a
// send failure, or the core loop on a protocol violation).
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
		if s.onClose != nil {
			s.onClose(s.id, nil)
		}
	})
}

func (s *Session) closeWithError(err error) {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
		if s.onClose != nil {
			s.onClose(s.id, err)
		}
	})
}

func (s *Session) readLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		msgType, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.log.Warn("read error", "error", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			// Only binary frames are accepted; a non-binary frame is a
			// protocol violation handled the same way as a decode error.
			s.closeWithError(errors.New("session: non-binary frame received"))
			return
		}

		msgs, err := wire.DecodeClient(raw)
		if err != nil {
			s.log.Warn("frame decode error", "error", err)
			s.closeWithError(err)
			return
		}

		for _, m := range msgs {
			s.onMessage(Envelope{SessionID: s.id, Tag: m.Tag, Payload: m.Payload})
		}
	}
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-s.outbound:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				s.closeWithError(err)
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.closeWithError(err)
				return
			}

		case <-s.done:
			return
		}
	}
}
