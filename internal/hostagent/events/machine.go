package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/ccmlink-io/ccmlink/internal/hostagent/core"
	"github.com/ccmlink-io/ccmlink/internal/hostagent/interrupt"
	"github.com/ccmlink-io/ccmlink/internal/pkg/metrics"
	fsmutil "github.com/ccmlink-io/ccmlink/internal/pkg/util/fsm"
	"github.com/ccmlink-io/ccmlink/pkg/at"
	"github.com/ccmlink-io/ccmlink/pkg/log"
)

// Machine states. The machine runs forever; there is no terminal state.
const (
	StateIdle         = "idle"
	StateEventPending = "event-pending"
	StateClassifying  = "classifying"
	StateDispatched   = "dispatched"
)

// Machine transition triggers.
const (
	triggerInterrupt = "interrupt"
	triggerQuery     = "query"
	triggerDispatch  = "dispatch"
	triggerSettle    = "settle"
)

// ErrHostReset is returned by Run when the module reported a startup event
// and the host reset was issued. On real hardware Run never gets to return
// it; elsewhere it tells the caller the agent must go down.
var ErrHostReset = errors.New("events: host reset dispatched")

// Machine consumes the interrupt flag, polls the module's event queue and
// dispatches the classified event. It is the only transport consumer after
// provisioning completes.
type Machine struct {
	fsm    *fsm.FSM
	cmd    at.Commander
	hal    core.HAL
	flag   *interrupt.Flag
	logger log.Logger
}

// NewMachine wires a Machine. flag must be the one the interrupt source
// reports into.
func NewMachine(cmd at.Commander, hal core.HAL, flag *interrupt.Flag) *Machine {
	m := &Machine{
		cmd:    cmd,
		hal:    hal,
		flag:   flag,
		logger: log.WithName("events"),
	}

	m.fsm = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: triggerInterrupt, Src: []string{StateIdle}, Dst: StateEventPending},
			{Name: triggerQuery, Src: []string{StateEventPending}, Dst: StateClassifying},
			{Name: triggerDispatch, Src: []string{StateClassifying}, Dst: StateDispatched},
			{Name: triggerSettle, Src: []string{StateDispatched}, Dst: StateIdle},
		},
		fsm.Callbacks{
			"before_" + triggerDispatch: fsmutil.WrapEvent(m.actionDispatch),
		},
	)
	return m
}

// State exposes the current machine state for the readiness endpoint.
func (m *Machine) State() string {
	return m.fsm.Current()
}

// Run blocks on the interrupt flag and executes one polling pass per
// wakeup until ctx is canceled or a host reset is dispatched.
func (m *Machine) Run(ctx context.Context) error {
	m.logger.Info("Event machine running")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.flag.Notify():
		}
		if !m.flag.Pending() {
			continue
		}
		if err := m.pass(ctx); err != nil {
			return err
		}
	}
}

// pass executes one idle → event-pending → classifying → dispatched → idle
// cycle. The flag is cleared only after dispatch, never before.
func (m *Machine) pass(ctx context.Context) error {
	if err := m.fsm.Event(ctx, triggerInterrupt); err != nil {
		return fmt.Errorf("event machine out of sync: %w", err)
	}

	outcome := m.cmd.Send(ctx, at.CmdEventQuery, "")
	if err := m.fsm.Event(ctx, triggerQuery); err != nil {
		return fmt.Errorf("event machine out of sync: %w", err)
	}

	class := Classify(outcome.Body)
	metrics.EventTotal.WithLabelValues(string(class)).Inc()

	if err := m.fsm.Event(ctx, triggerDispatch, class); err != nil {
		return err
	}

	m.flag.Clear()
	if err := m.fsm.Event(ctx, triggerSettle); err != nil {
		return fmt.Errorf("event machine out of sync: %w", err)
	}
	return nil
}

// actionDispatch runs the stage-specific reaction while the machine enters
// the dispatched state. Unrecognized descriptors are a deliberate no-op.
func (m *Machine) actionDispatch(ctx context.Context, e *fsm.Event) error {
	class := e.Args[0].(Classification)

	switch class {
	case ClassMessage:
		m.logger.Info("New message on the subscribed topic")
		m.cmd.Send(ctx, at.CmdGet1, "")
	case ClassOTAOffered:
		m.logger.Info("New OTA firmware offered, accepting download")
		m.cmd.Send(ctx, at.CmdOTAAccept, "")
	case ClassOTAVerified:
		m.logger.Info("OTA firmware verified, applying")
		m.cmd.Send(ctx, at.CmdOTAApply, "")
	case ClassStartup:
		m.logger.Warn("Module reported startup, resetting host")
		if err := m.hal.Reset(); err != nil {
			return fmt.Errorf("host reset failed: %w", err)
		}
		return ErrHostReset
	case ClassNone:
		m.logger.Debug("No actionable module event")
	}
	return nil
}
