package hostagent

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ccmlink-io/ccmlink/internal/hostagent/events"
	"github.com/ccmlink-io/ccmlink/internal/hostagent/interrupt"
	"github.com/ccmlink-io/ccmlink/internal/hostagent/provision"
	httpserver "github.com/ccmlink-io/ccmlink/internal/hostagent/server/http"
	"github.com/ccmlink-io/ccmlink/pkg/log"
	"github.com/ccmlink-io/ccmlink/pkg/options"
)

// Agent owns the module link for its whole lifetime: provision once, then
// route events until shutdown. The observability server runs alongside from
// the start so probes work during the (possibly long) provisioning phase.
type Agent struct {
	flag        *interrupt.Flag
	source      interrupt.Source
	provisioner *provision.Provisioner
	machine     *events.Machine
	httpOptions *options.HttpOptions

	ready atomic.Bool
}

// Run blocks until ctx is canceled or a component fails. A host reset
// dispatched by the event machine also ends the run; on real hardware the
// reboot itself preempts the return.
func (a *Agent) Run(ctx context.Context) error {
	log.Info("Starting ccm-host-agent")

	g, ctx := errgroup.WithContext(ctx)

	srv := httpserver.NewServer(a.httpOptions, a.ready.Load)
	g.Go(func() error { return srv.Start(ctx) })

	g.Go(func() error {
		if err := a.provisioner.Run(ctx); err != nil {
			if provision.IsFatalConnect(err) {
				log.Error(err, "Provisioning failed, operator intervention required")
			}
			return err
		}
		a.ready.Store(true)
		log.Info("Provisioning complete, entering event loop")

		eg, ctx := errgroup.WithContext(ctx)
		eg.Go(func() error { return a.source.Run(ctx, a.flag) })
		eg.Go(func() error { return a.machine.Run(ctx) })
		return eg.Wait()
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		log.Info("Agent shutting down")
		return nil
	}
	return err
}
