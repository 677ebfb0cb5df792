//go:build !linux

package hal

import (
	"github.com/ccmlink-io/ccmlink/internal/hostagent/core"
	"github.com/ccmlink-io/ccmlink/pkg/log"
)

// mockHAL stands in on development machines where rebooting the host is not
// an option.
type mockHAL struct{}

func New() core.HAL {
	return &mockHAL{}
}

func (h *mockHAL) Reset() error {
	log.Warn("[HAL-Mock] Host reset requested; restart the agent manually to mimic the reboot")
	return nil
}
