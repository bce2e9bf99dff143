package noodles

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/noodles-go/noodles/pkg/delegate"
	"github.com/noodles-go/noodles/pkg/dispatch"
	"github.com/noodles-go/noodles/pkg/noodleid"
	"github.com/noodles-go/noodles/pkg/session"
	"github.com/noodles-go/noodles/pkg/telemetry"
)

// StartingComponent is one entry of a Config's StartingState, an ordered
// list applied at startup before the server accepts connections.
// Handler is only consulted when Kind is noodleid.KindMethod; it is
// registered against the resulting method ID before the next entry is
// applied.
type StartingComponent struct {
	Kind    noodleid.Kind
	Name    string
	Payload any
	Handler dispatch.Handler
}

// Config configures a Server. Every field has a sensible zero-friendly
// default, and DefaultConfig returns a fully populated value callers can
// selectively override.
type Config struct {
	// Port is the websocket listen port.
	Port uint16

	// StartingState is applied in order before the server starts
	// accepting connections.
	StartingState []StartingComponent

	// Delegates overrides the built-in delegate factory per kind. Any
	// kind absent from the map uses delegate.DefaultFactories()'s entry.
	Delegates delegate.Factories

	// JSONDumpPath, if set, additionally writes the startup snapshot to
	// this path as JSON (a debug aid).
	JSONDumpPath string

	// ReadTimeout/WriteTimeout/PingInterval/OutboundQueueSize/
	// MaxFrameBytes tune every session's transport loops.
	SessionConfig session.Config

	// ShutdownTimeout bounds the HTTP listener shutdown and the total
	// grace period given to sessions before they are closed when Run's
	// context is canceled. Outbound queues are not checked for emptiness.
	ShutdownTimeout time.Duration

	// InboundQueueSize bounds the channel transport goroutines forward
	// decoded frames through to the core loop.
	InboundQueueSize int

	// CheckOrigin is passed straight to the websocket.Upgrader.
	CheckOrigin func(*http.Request) bool

	Logger  *slog.Logger
	Metrics *telemetry.Metrics
	Tracer  trace.Tracer
}

// DefaultConfig returns a Config with every ambient field populated; only
// Port and StartingState typically need overriding by a caller.
func DefaultConfig() Config {
	return Config{
		Port:             50000,
		Delegates:        delegate.DefaultFactories(),
		SessionConfig:    session.DefaultConfig(),
		ShutdownTimeout:  5 * time.Second,
		InboundQueueSize: 1024,
		CheckOrigin:      func(*http.Request) bool { return true },
		Logger:           slog.Default(),
	}
}
