package events

import (
	"context"

	"github.com/ccmlink-io/ccmlink/pkg/at"
	"github.com/ccmlink-io/ccmlink/pkg/log"
)

// Drain flushes the module's event queue by querying it until the idle
// reply comes back. Run once after provisioning so events queued while the
// host was configuring are not misread as fresh notifications by the main
// loop. Loops for as long as the module keeps answering with a backlog;
// only ctx cancellation bounds it.
func Drain(ctx context.Context, cmd at.Commander) error {
	drained := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cmd.Send(ctx, at.CmdEventQuery, at.ReplyOK).OK {
			if drained > 0 {
				log.Info("Drained stale module events", "count", drained)
			}
			return nil
		}
		drained++
	}
}
