package at

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ccmlink-io/ccmlink/internal/pkg/metrics"
	"github.com/ccmlink-io/ccmlink/pkg/log"
)

// Outcome is the result of one command round-trip. It is produced once per
// Send and consumed immediately by the caller; the engine keeps no history.
type Outcome struct {
	// OK reports whether the reply satisfied the call: an exact match when
	// an expected reply was given, or any reply at all when none was.
	OK bool

	// Body is the raw reply text including its terminator, empty when the
	// command timed out.
	Body string

	// TimedOut distinguishes "no reply at all" from a mismatching reply.
	TimedOut bool
}

// Commander is the command/response surface the provisioning flow and the
// event machine build on. *Engine is the production implementation; tests
// substitute scripted fakes.
type Commander interface {
	// Send writes cmd to the module and waits for one reply. With a
	// non-empty expect, only that exact reply yields OK; any other reply is
	// a failure whose body remains available for diagnostics. With an empty
	// expect, the first reply before the timeout is returned as success.
	Send(ctx context.Context, cmd Command, expect string) Outcome

	// CloudConnected re-queries the module's cloud connection state.
	CloudConnected(ctx context.Context) bool

	// WiFiConnected re-queries the module's Wi-Fi association state.
	WiFiConnected(ctx context.Context) bool
}

var _ Commander = (*Engine)(nil)

// Engine serializes AT command round-trips over a single half-duplex
// transport. At most one command is outstanding at any time and commands
// reach the module in call order. The engine never retries; recovery
// decisions belong to callers.
type Engine struct {
	transport Transport
	timeout   time.Duration
	logger    log.Logger

	// mu guarantees the one-outstanding-command contract.
	mu sync.Mutex
}

// NewEngine creates an Engine over the given transport. timeout is the
// uniform per-command reply deadline and must be positive.
func NewEngine(transport Transport, timeout time.Duration) *Engine {
	if timeout <= 0 {
		panic("at: non-positive response timeout")
	}
	return &Engine{
		transport: transport,
		timeout:   timeout,
		logger:    log.WithName("at"),
	}
}

// Send implements Commander.
func (e *Engine) Send(ctx context.Context, cmd Command, expect string) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if stale := e.transport.Drain(); stale > 0 {
		e.logger.Warn("Discarded stale module output", "lines", stale, "command", cmd.Name())
	}

	start := time.Now()
	outcome := e.roundTrip(ctx, cmd, expect)

	metrics.CommandLatency.WithLabelValues(cmd.Name()).Observe(time.Since(start).Seconds())
	metrics.CommandTotal.WithLabelValues(cmd.Name(), outcomeLabel(outcome)).Inc()

	switch {
	case outcome.TimedOut:
		e.logger.Warn("AT command timed out", "command", cmd.Name(), "timeout", e.timeout)
	case !outcome.OK:
		e.logger.Warn("AT command reply mismatch", "command", cmd.Name(), "reply", trimTerminator(outcome.Body))
	default:
		e.logger.Debug("AT command completed", "command", cmd.Name(), "reply", trimTerminator(outcome.Body))
	}

	return outcome
}

func (e *Engine) roundTrip(ctx context.Context, cmd Command, expect string) Outcome {
	if err := e.transport.WriteString(string(cmd)); err != nil {
		e.logger.Error(err, "Failed to write AT command", "command", cmd.Name())
		return Outcome{}
	}

	reply, err := e.transport.ReadLine(ctx, e.timeout)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return Outcome{TimedOut: true}
		}
		e.logger.Error(err, "Failed to read module reply", "command", cmd.Name())
		return Outcome{}
	}

	if expect == "" {
		return Outcome{OK: true, Body: reply}
	}
	return Outcome{OK: reply == expect, Body: reply}
}

// CloudConnected implements Commander. The state is derived on demand and
// never cached; any failure reads as "not connected".
func (e *Engine) CloudConnected(ctx context.Context) bool {
	connected := e.Send(ctx, CmdConnectQuery, ReplyConnected).OK
	if connected {
		metrics.CloudConnectivityStatus.Set(1)
	} else {
		metrics.CloudConnectivityStatus.Set(0)
	}
	return connected
}

// WiFiConnected implements Commander, with the same re-query semantics.
func (e *Engine) WiFiConnected(ctx context.Context) bool {
	return e.Send(ctx, CmdWiFiQuery, ReplyWiFiConnected).OK
}

func outcomeLabel(o Outcome) string {
	switch {
	case o.OK:
		return "success"
	case o.TimedOut:
		return "timeout"
	default:
		return "mismatch"
	}
}

func trimTerminator(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
