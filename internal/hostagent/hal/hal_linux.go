//go:build linux

package hal

import (
	"syscall"

	"github.com/ccmlink-io/ccmlink/internal/hostagent/core"
	"github.com/ccmlink-io/ccmlink/pkg/log"
)

// linuxHAL issues real host operations.
type linuxHAL struct{}

func New() core.HAL {
	return &linuxHAL{}
}

func (h *linuxHAL) Reset() error {
	log.Warn("Host reset requested by module startup event, rebooting now")
	syscall.Sync()
	return syscall.Reboot(syscall.LINUX_REBOOT_CMD_RESTART)
}
