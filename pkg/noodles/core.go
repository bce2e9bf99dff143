package noodles

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/noodles-go/noodles/pkg/broadcast"
	"github.com/noodles-go/noodles/pkg/dispatch"
	"github.com/noodles-go/noodles/pkg/session"
	"github.com/noodles-go/noodles/pkg/wire"
)

// Run starts the HTTP/websocket listener and the core event loop, and
// blocks until ctx is canceled, at which point it shuts down gracefully
// and returns.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	s.accepting = true
	s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWebSocket)
	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", s.cfg.Port), Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		s.coreLoop()
	}()

	select {
	case <-ctx.Done():
		s.shutdown(httpServer)
		<-loopDone
		return nil
	case err := <-serveErr:
		s.shutdown(httpServer)
		<-loopDone
		return err
	}
}

// shutdown refuses new connections, then gives each session a grace
// period of at most 10ms (all within ShutdownTimeout) before closing it.
// It does not check whether a session's outbound queue has emptied.
func (s *Server) shutdown(httpServer *http.Server) {
	s.mu.Lock()
	s.accepting = false
	sessions := make([]*sessionEntry, 0, len(s.sessions))
	for _, se := range s.sessions {
		sessions = append(sessions, se)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	_ = httpServer.Shutdown(ctx)

	deadline := time.Now().Add(s.cfg.ShutdownTimeout)
	for _, se := range sessions {
		remaining := time.Until(deadline)
		if remaining > 0 {
			time.Sleep(minDuration(remaining, 10*time.Millisecond))
		}
		se.sess.Close()
	}

	close(s.done)
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// handleWebSocket upgrades the connection, registers the session in the
// Accepted state, and starts its transport loops. New sessions are
// refused once the server has begun shutting down.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	accepting := s.accepting
	s.mu.Unlock()
	if !accepting {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: s.cfg.CheckOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := broadcast.SessionID(uuid.NewString())
	sess := session.New(id, conn, s.cfg.SessionConfig, s.log, s.forwardEnvelope, s.forwardClose)

	s.mu.Lock()
	s.sessions[id] = &sessionEntry{sess: sess, state: session.Accepted}
	s.mu.Unlock()

	s.hub.Register(id, sess)
	if s.metrics != nil {
		s.metrics.SessionsActive.Inc()
		s.metrics.SessionsTotal.WithLabelValues("accepted").Inc()
	}

	sess.Start()
}

// forwardEnvelope is the Session.onMessage callback: it is the only
// bridge between a session's read goroutine and the core loop, forwarding
// inbound frames through a bounded channel. It must never block for
// long; a full inbound channel means the core loop is overwhelmed and
// back-pressure is applied to the reader.
func (s *Server) forwardEnvelope(env session.Envelope) {
	select {
	case s.inbound <- env:
	case <-s.done:
	}
}

// forwardClose is the Session.onClose callback: it removes the session
// from the hub and the session set immediately (from whichever goroutine
// detected the closure), since no further core-loop bookkeeping is
// required for a session that is already gone.
func (s *Server) forwardClose(id broadcast.SessionID, err error) {
	s.hub.Unregister(id)
	s.mu.Lock()
	_, existed := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if existed && s.metrics != nil {
		s.metrics.SessionsActive.Dec()
	}
}

// coreLoop is the single goroutine that serializes every registry,
// broadcast, and dispatch mutation.
func (s *Server) coreLoop() {
	for {
		select {
		case env := <-s.inbound:
			s.handleEnvelope(env)
		case fn := <-s.deferCh:
			fn()
		case <-s.done:
			return
		}
	}
}

func (s *Server) handleEnvelope(env session.Envelope) {
	s.mu.Lock()
	se, ok := s.sessions[env.SessionID]
	s.mu.Unlock()
	if !ok {
		return
	}

	switch se.state {
	case session.Accepted:
		s.handleAccepted(se, env)
	case session.Introduced:
		// The snapshot send in handleAccepted is synchronous, so no
		// message should arrive while still in this transient state; a
		// client that does so is misbehaving.
		se.sess.Close()
	case session.Active:
		s.handleActive(se, env)
	case session.Closed:
	}
}

func (s *Server) handleAccepted(se *sessionEntry, env session.Envelope) {
	if env.Tag != wire.TagIntroMessage {
		// The only acceptable inbound frame in this state is an
		// IntroMessage; any other frame closes the session.
		se.sess.Close()
		return
	}
	var intro wire.IntroMessagePayload
	if err := (wire.ClientMessage{Payload: env.Payload}).Decode(&intro); err != nil {
		se.sess.Close()
		return
	}
	se.sess.SetName(intro.ClientName)
	se.state = session.Introduced
	s.sendSnapshot(se.sess)
	se.state = session.Active
}

func (s *Server) handleActive(se *sessionEntry, env session.Envelope) {
	switch env.Tag {
	case wire.TagIntroMessage:
		// A second IntroMessage closes the session rather than being
		// silently ignored, so a misbehaving client cannot quietly change
		// its declared name mid-session.
		se.sess.Close()
	case wire.TagInvokeMethod:
		s.handleInvoke(se, env)
	default:
		se.sess.Close()
	}
}

func (s *Server) handleInvoke(se *sessionEntry, env session.Envelope) {
	var payload wire.InvokeMethodPayload
	if err := (wire.ClientMessage{Payload: env.Payload}).Decode(&payload); err != nil {
		if s.metrics != nil {
			s.metrics.FrameDecodeErrors.WithLabelValues("invoke_method").Inc()
		}
		se.sess.Close()
		return
	}

	methodID := payload.Method.FromWire()
	invokeCtx := contextFromWire(payload.Context)

	result, methodErr := s.dispatcher.Invoke(context.Background(), s, env.SessionID, methodID, invokeCtx, payload.InvokeID, payload.Args)

	reply := wire.MethodReplyPayload{InvokeID: payload.InvokeID}
	if methodErr != nil {
		reply.MethodException = &wire.MethodExceptionWire{
			Code:    uint16(methodErr.Code),
			Message: methodErr.Message,
			Data:    methodErr.Data,
		}
	} else {
		reply.Result = result
	}
	s.sendFrame(env.SessionID, wire.TagMethodReply, reply)
}

// Ensure Server satisfies dispatch.Server structurally at compile time.
var _ dispatch.Server = (*Server)(nil)
