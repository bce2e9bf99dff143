// Package noodles implements the NOODLES server runtime: the component
// that owns the registry, the broadcast hub, the session set, and the
// method dispatcher, and drives the single shared core event loop.
package noodles

import (
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/noodles-go/noodles/pkg/broadcast"
	"github.com/noodles-go/noodles/pkg/delegate"
	"github.com/noodles-go/noodles/pkg/dispatch"
	"github.com/noodles-go/noodles/pkg/noodleid"
	"github.com/noodles-go/noodles/pkg/scene"
	"github.com/noodles-go/noodles/pkg/session"
	"github.com/noodles-go/noodles/pkg/telemetry"
	"github.com/noodles-go/noodles/pkg/wire"
)

// sessionEntry tracks one connected session's transport handle plus its
// protocol state, owned exclusively by the core loop.
type sessionEntry struct {
	sess  *session.Session
	state session.State
}

// Server is the NOODLES server runtime. Exactly one goroutine — the core
// loop started by Run — ever mutates registry or dispatcher; every other
// path communicates with it by forwarding work onto inbound or deferCh.
// The session set (under mu) and the hub are also updated by transport
// goroutines when a session connects or closes.
type Server struct {
	cfg     Config
	log     *slog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer

	registry       *scene.Registry
	hub            *broadcast.Hub
	dispatcher     *dispatch.Dispatcher
	delegates      delegate.Factories
	tableDelegates map[noodleid.ID]delegate.TableDelegate

	inbound chan session.Envelope
	deferCh chan func()
	done    chan struct{}

	mu        sync.Mutex
	sessions  map[broadcast.SessionID]*sessionEntry
	accepting bool
	nextID    uint64
}

// New builds a Server and applies cfg.StartingState. It does not start
// accepting connections; call Run for that.
func New(cfg Config) (*Server, error) {
	if cfg.Delegates == nil {
		cfg.Delegates = delegate.DefaultFactories()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.InboundQueueSize <= 0 {
		cfg.InboundQueueSize = 1024
	}

	s := &Server{
		cfg:            cfg,
		log:            cfg.Logger.With("component", "noodles"),
		metrics:        cfg.Metrics,
		tracer:         cfg.Tracer,
		registry:       scene.New(),
		delegates:      cfg.Delegates,
		tableDelegates: make(map[noodleid.ID]delegate.TableDelegate),
		inbound:        make(chan session.Envelope, cfg.InboundQueueSize),
		deferCh:        make(chan func(), cfg.InboundQueueSize),
		done:           make(chan struct{}),
		sessions:       make(map[broadcast.SessionID]*sessionEntry),
	}
	s.hub = broadcast.New(s.handleSessionFailure)
	s.dispatcher = dispatch.New(s.registry, s.metrics, s.tracer)

	for _, sc := range cfg.StartingState {
		if _, err := s.createComponentLocked(sc.Kind, sc.Name, sc.Payload, sc.Handler, false); err != nil {
			return nil, fmt.Errorf("noodles: starting state entry %q: %w", sc.Name, err)
		}
	}

	if cfg.JSONDumpPath != "" {
		if err := s.dumpSnapshotJSON(cfg.JSONDumpPath); err != nil {
			return nil, fmt.Errorf("noodles: json dump: %w", err)
		}
	}
	return s, nil
}

// handleSessionFailure is the broadcast.Hub onFailure callback: a session
// whose outbound queue overflowed or whose send failed is torn down.
func (s *Server) handleSessionFailure(id broadcast.SessionID, err error) {
	s.mu.Lock()
	se, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	s.log.Warn("session send failure, tearing down", "session_id", string(id), "error", err)
	se.sess.Close()
}

// CreateComponent implements dispatch.Server. It must only be called
// from the core loop (directly from Run's select, or indirectly via a
// handler invoked on it); calling it from another goroutine races the
// registry.
func (s *Server) CreateComponent(kind noodleid.Kind, name string, payload any) (noodleid.ID, error) {
	return s.createComponentLocked(kind, name, payload, nil, true)
}

func (s *Server) createComponentLocked(kind noodleid.Kind, name string, payload any, handler dispatch.Handler, broadcastCreate bool) (noodleid.ID, error) {
	id, err := s.registry.Create(kind, name, payload)
	if err != nil {
		return noodleid.Null, err
	}

	if kind == noodleid.KindMethod && handler != nil {
		s.dispatcher.Register(id, handler)
	}

	if kind == noodleid.KindTable {
		del := s.delegates.New(kind)
		s.tableDelegates[id] = del
		methodIDs, err := s.attachTableMethods(id, del)
		if err != nil {
			return noodleid.Null, err
		}
		entry, _ := s.registry.Get(id)
		tbl := entry.Payload.(scene.Table)
		tbl.MethodsList = append(append([]noodleid.ID(nil), tbl.MethodsList...), methodIDs...)
		if err := s.registry.Update(id, tbl); err != nil {
			return noodleid.Null, err
		}
	}

	if s.metrics != nil {
		s.metrics.ComponentsLive.WithLabelValues(kind.String()).Inc()
	}

	if broadcastCreate {
		entry, ok := s.registry.Get(id)
		if ok {
			s.broadcastEntry(entry)
		}
	}
	return id, nil
}

// UpdateComponent implements dispatch.Server.
func (s *Server) UpdateComponent(id noodleid.ID, payload any) error {
	if err := s.registry.Update(id, payload); err != nil {
		return err
	}
	entry, ok := s.registry.Get(id)
	if !ok {
		return nil
	}
	tag, wirePayload, err := wire.UpdateMessage(entry)
	if err != nil {
		// Kind has no update message on the wire; nothing more to do.
		return nil
	}
	s.broadcastFrame(tag, wirePayload)
	return nil
}

// DeleteComponent implements dispatch.Server.
func (s *Server) DeleteComponent(id noodleid.ID) error {
	if err := s.registry.Delete(id); err != nil {
		return err
	}
	if id.Kind == noodleid.KindTable {
		delete(s.tableDelegates, id)
	}
	if s.metrics != nil {
		s.metrics.ComponentsLive.WithLabelValues(id.Kind.String()).Dec()
	}
	s.broadcastFrame(wire.DeleteTagFor(id.Kind), wire.DeletePayload{ID: wire.ToWire(id)})
	return nil
}

// InvokeSignal implements dispatch.Server: broadcasts a SignalInvoke to
// every connected session.
func (s *Server) InvokeSignal(signal noodleid.ID, ctx dispatch.InvocationContext, args []any) {
	s.broadcastFrame(wire.TagSignalInvoke, wire.SignalInvokePayload{
		Signal:  wire.ToWire(signal),
		Context: contextToWire(ctx),
		Args:    args,
	})
}

// GetComponent implements dispatch.Server.
func (s *Server) GetComponent(id noodleid.ID) (scene.Entry, bool) {
	return s.registry.Get(id)
}

// GetIDsByKind implements dispatch.Server.
func (s *Server) GetIDsByKind(kind noodleid.Kind) []noodleid.ID {
	return s.registry.IDsByKind(kind)
}

// GetComponentID implements dispatch.Server.
func (s *Server) GetComponentID(kind noodleid.Kind, name string) (noodleid.ID, bool) {
	ids := s.registry.IDsByName(name)
	for i := len(ids) - 1; i >= 0; i-- {
		if ids[i].Kind == kind {
			return ids[i], true
		}
	}
	return noodleid.Null, false
}

// GetDelegate implements dispatch.Server.
func (s *Server) GetDelegate(id noodleid.ID) (delegate.TableDelegate, bool) {
	d, ok := s.tableDelegates[id]
	return d, ok
}

// Defer implements dispatch.Server: fn runs on a later core-loop
// iteration, never inline with the caller — the escape hatch for
// handlers that need to act asynchronously. deferCh is buffered, so a
// handler calling Defer from the core loop itself never blocks as long
// as the queue is not saturated.
func (s *Server) Defer(fn func()) {
	select {
	case s.deferCh <- fn:
	case <-s.done:
	}
}

func (s *Server) broadcastEntry(entry scene.Entry) {
	tag, payload, err := wire.CreateMessage(entry)
	if err != nil {
		s.log.Error("wire: failed to build create message", "id", entry.ID.String(), "error", err)
		return
	}
	s.broadcastFrame(tag, payload)
}

func (s *Server) broadcastFrame(tag wire.ServerTag, payload any) {
	frame, err := wire.EncodeServerValues(int(tag), payload)
	if err != nil {
		s.log.Error("wire: failed to encode frame", "tag", tag.String(), "error", err)
		return
	}
	s.hub.Broadcast(frame)
	if s.metrics != nil {
		s.metrics.MessagesBroadcastTotal.Inc()
	}
}

func (s *Server) sendFrame(id broadcast.SessionID, tag wire.ServerTag, payload any) {
	frame, err := wire.EncodeServerValues(int(tag), payload)
	if err != nil {
		s.log.Error("wire: failed to encode targeted frame", "tag", tag.String(), "error", err)
		return
	}
	if s.hub.Send(id, frame) && s.metrics != nil {
		s.metrics.MessagesSentTotal.Inc()
	}
}

func contextToWire(ctx dispatch.InvocationContext) *wire.ContextWire {
	if ctx.IsGlobal() {
		return nil
	}
	return &wire.ContextWire{
		Entity: idPtrToWire(ctx.Entity),
		Table:  idPtrToWire(ctx.Table),
		Plot:   idPtrToWire(ctx.Plot),
	}
}

func idPtrToWire(id *noodleid.ID) *wire.IDWire {
	if id == nil {
		return nil
	}
	w := wire.ToWire(*id)
	return &w
}

func contextFromWire(w *wire.ContextWire) dispatch.InvocationContext {
	if w == nil {
		return dispatch.InvocationContext{}
	}
	var ctx dispatch.InvocationContext
	if w.Entity != nil {
		id := w.Entity.FromWire()
		ctx.Entity = &id
	}
	if w.Table != nil {
		id := w.Table.FromWire()
		ctx.Table = &id
	}
	if w.Plot != nil {
		id := w.Plot.FromWire()
		ctx.Plot = &id
	}
	return ctx
}
