//go:build !linux

package sandbox

import "time"

// setCPULimit reports that no kernel-enforced limit is available; the
// caller falls back to the watchdog timer.
func setCPULimit(pid int, d time.Duration) (enforced bool, err error) {
	return false, nil
}
