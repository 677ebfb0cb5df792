package interrupt

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ccmlink-io/ccmlink/pkg/log"
)

// Source produces rising edges of the module's event line and reports them
// through a Flag. A source must never talk to the module itself.
type Source interface {
	Run(ctx context.Context, flag *Flag) error
}

// SysfsGPIO watches an exported sysfs GPIO value file for rising edges.
// The pin must already be exported and configured as an input by the system
// bring-up; this mirrors treating GPIO setup as an external concern.
type SysfsGPIO struct {
	// Path of the value file, e.g. /sys/class/gpio/gpio17/value.
	Path string

	// Interval between samples. Edges shorter than the interval are missed,
	// which is acceptable: the module keeps the line asserted while its
	// event queue is non-empty.
	Interval time.Duration
}

func (s *SysfsGPIO) Run(ctx context.Context, flag *Flag) error {
	interval := s.Interval
	if interval == 0 {
		interval = 50 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last bool
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		raw, err := os.ReadFile(s.Path)
		if err != nil {
			return fmt.Errorf("failed to sample event line %s: %w", s.Path, err)
		}
		high := strings.TrimSpace(string(raw)) == "1"
		if high && !last {
			log.Debug("Event line rising edge")
			flag.Set()
		}
		last = high
	}
}

// Ticker periodically raises the flag regardless of any hardware line. Used
// on hosts with no event pin wired (development against ccm-sim); the event
// machine tolerates empty polls because an idle queue classifies as no-op.
type Ticker struct {
	Interval time.Duration
}

func (t *Ticker) Run(ctx context.Context, flag *Flag) error {
	interval := t.Interval
	if interval == 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			flag.Set()
		}
	}
}
