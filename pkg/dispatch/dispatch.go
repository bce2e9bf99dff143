// Package dispatch implements the NOODLES method dispatcher: resolving a
// method ID and invocation context to a handler, validating argument
// arity/shape, invoking it, and translating its result or error into a
// MethodReply.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noodles-go/noodles/pkg/broadcast"
	"github.com/noodles-go/noodles/pkg/delegate"
	"github.com/noodles-go/noodles/pkg/ncerr"
	"github.com/noodles-go/noodles/pkg/noodleid"
	"github.com/noodles-go/noodles/pkg/scene"
	"github.com/noodles-go/noodles/pkg/telemetry"
)

// InvocationContext identifies the target a method or signal is attached
// to: at most one of Entity, Table, Plot is set; all nil means the
// document-global context.
type InvocationContext struct {
	Entity *noodleid.ID
	Table  *noodleid.ID
	Plot   *noodleid.ID
}

// IsGlobal reports whether ctx refers to the document-global context.
func (ctx InvocationContext) IsGlobal() bool {
	return ctx.Entity == nil && ctx.Table == nil && ctx.Plot == nil
}

// HandlerContext is passed to every method handler.
type HandlerContext struct {
	Context   InvocationContext
	InvokeID  string
	SessionID broadcast.SessionID
	Server    Server
}

// Handler is user-provided logic bound to a Method component at
// registration time.
type Handler func(ctx HandlerContext, args []any) (result any, err error)

// Server is the full public server interface a handler may call back
// into. Defined here, not in pkg/noodles, so pkg/dispatch has no
// import-time dependency on the package that owns it; pkg/noodles.Server
// satisfies this interface structurally.
type Server interface {
	CreateComponent(kind noodleid.Kind, name string, payload any) (noodleid.ID, error)
	UpdateComponent(id noodleid.ID, payload any) error
	DeleteComponent(id noodleid.ID) error
	InvokeSignal(signal noodleid.ID, ctx InvocationContext, args []any)
	GetComponent(id noodleid.ID) (scene.Entry, bool)
	GetIDsByKind(kind noodleid.Kind) []noodleid.ID
	GetComponentID(kind noodleid.Kind, name string) (noodleid.ID, bool)
	GetDelegate(id noodleid.ID) (delegate.TableDelegate, bool)
	Defer(fn func())
}

// Dispatcher resolves method IDs to handlers and drives the invoke
// pipeline: resolve, validate attachment, validate args, invoke, reply.
type Dispatcher struct {
	registry *scene.Registry
	handlers map[noodleid.ID]Handler
	metrics  *telemetry.Metrics
	tracer   trace.Tracer
}

// New builds a Dispatcher over registry. metrics/tracer may be nil, in
// which case dispatch simply skips instrumentation.
func New(registry *scene.Registry, metrics *telemetry.Metrics, tracer trace.Tracer) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		handlers: make(map[noodleid.ID]Handler),
		metrics:  metrics,
		tracer:   tracer,
	}
}

// Register binds handler to a method ID. Called once per Method
// component, typically right after scene.Registry.Create returns the ID,
// whether at startup or from a live MethodCreate issued by handler code.
func (d *Dispatcher) Register(methodID noodleid.ID, handler Handler) {
	d.handlers[methodID] = handler
}

// Unregister drops a method's handler, normally paired with deleting the
// underlying Method component.
func (d *Dispatcher) Unregister(methodID noodleid.ID) {
	delete(d.handlers, methodID)
}

// Invoke runs the full dispatch pipeline for one InvokeMethod request and
// returns the MethodReply payload fields; sending the reply is left to
// the caller, which knows the wire/broadcast plumbing.
func (d *Dispatcher) Invoke(ctx context.Context, server Server, sessionID broadcast.SessionID, methodID noodleid.ID, invokeCtx InvocationContext, invokeID string, args []any) (result any, methodErr *ncerr.Error) {
	start := time.Now()
	var span trace.Span
	if d.tracer != nil {
		ctx, span = d.tracer.Start(ctx, "dispatch.invoke", trace.WithAttributes(
			attribute.String("noodles.method_id", methodID.String()),
			attribute.String("noodles.invoke_id", invokeID),
		))
		defer span.End()
	}
	_ = ctx

	defer func() {
		if d.metrics == nil {
			return
		}
		d.metrics.MethodInvokeDuration.WithLabelValues(methodID.String()).Observe(time.Since(start).Seconds())
		if methodErr != nil {
			d.metrics.MethodInvokeErrors.WithLabelValues(methodErr.Code.String()).Inc()
		}
	}()

	entry, ok := d.registry.Get(methodID)
	if !ok {
		methodErr = ncerr.MethodNotFound("method %s is not alive", methodID)
		d.recordSpanError(span, methodErr)
		return nil, methodErr
	}
	method, ok := entry.Payload.(scene.Method)
	if !ok {
		methodErr = ncerr.Internal(fmt.Errorf("component %s is not a Method", methodID))
		d.recordSpanError(span, methodErr)
		return nil, methodErr
	}

	if !d.methodAttached(methodID, invokeCtx) {
		methodErr = ncerr.MethodNotFound("method %s is not attached to the target context", methodID)
		d.recordSpanError(span, methodErr)
		return nil, methodErr
	}

	if err := validateArgs(method, args); err != nil {
		methodErr = err
		d.recordSpanError(span, methodErr)
		return nil, methodErr
	}

	handler, ok := d.handlers[methodID]
	if !ok {
		methodErr = ncerr.MethodNotFound("method %s has no registered handler", methodID)
		d.recordSpanError(span, methodErr)
		return nil, methodErr
	}

	result, err := d.invokeHandler(handler, HandlerContext{
		Context: invokeCtx, InvokeID: invokeID, SessionID: sessionID, Server: server,
	}, args)
	if err != nil {
		if ne, ok := ncerr.As(err); ok {
			methodErr = ne
		} else {
			methodErr = ncerr.Internal(err)
		}
		d.recordSpanError(span, methodErr)
		return nil, methodErr
	}

	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
	return result, nil
}

// invokeHandler runs handler with panic recovery: a panicking handler
// becomes an InternalError reply rather than taking down the event loop.
func (d *Dispatcher) invokeHandler(handler Handler, hctx HandlerContext, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(hctx, args)
}

func (d *Dispatcher) recordSpanError(span trace.Span, err *ncerr.Error) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Error, err.Error())
}

// methodAttached checks that methodID appears in the target's
// methods_list. For the document-global context (all of invokeCtx nil),
// a method is attached iff it is not attached to any entity, table, or
// plot's methods_list — the same by-elimination rule that derives the
// global methods list sent in each DocumentUpdate.
func (d *Dispatcher) methodAttached(methodID noodleid.ID, invokeCtx InvocationContext) bool {
	var methodsList []noodleid.ID
	switch {
	case invokeCtx.Entity != nil:
		entry, ok := d.registry.Get(*invokeCtx.Entity)
		if !ok {
			return false
		}
		e, ok := entry.Payload.(scene.Entity)
		if !ok {
			return false
		}
		methodsList = e.MethodsList
	case invokeCtx.Table != nil:
		entry, ok := d.registry.Get(*invokeCtx.Table)
		if !ok {
			return false
		}
		tbl, ok := entry.Payload.(scene.Table)
		if !ok {
			return false
		}
		methodsList = tbl.MethodsList
	case invokeCtx.Plot != nil:
		entry, ok := d.registry.Get(*invokeCtx.Plot)
		if !ok {
			return false
		}
		p, ok := entry.Payload.(scene.Plot)
		if !ok {
			return false
		}
		methodsList = p.MethodsList
	default:
		return !d.registry.Referenced(methodID)
	}

	for _, id := range methodsList {
		if id == methodID {
			return true
		}
	}
	return false
}

// validateArgs checks arity against method.ArgDoc and, where an
// editor_hint names a recognizable scalar kind, its Go type. A method
// with an empty ArgDoc accepts any number of arguments unchecked.
func validateArgs(method scene.Method, args []any) *ncerr.Error {
	if len(method.ArgDoc) > 0 && len(args) != len(method.ArgDoc) {
		return ncerr.InvalidArgument("method %s expects %d argument(s), got %d", method.Name, len(method.ArgDoc), len(args))
	}
	for i, spec := range method.ArgDoc {
		if i >= len(args) {
			break
		}
		if err := checkShape(spec.EditorHint, args[i]); err != nil {
			return ncerr.InvalidArgument("method %s argument %d (%s): %v", method.Name, i, spec.Name, err)
		}
	}
	return nil
}

func checkShape(hint string, value any) error {
	switch hint {
	case "", "any":
		return nil
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	case "int", "integer":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return nil
		default:
			return fmt.Errorf("expected integer, got %T", value)
		}
	case "real", "float":
		switch value.(type) {
		case float32, float64:
			return nil
		default:
			return fmt.Errorf("expected real, got %T", value)
		}
	case "bool", "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	}
	return nil
}
