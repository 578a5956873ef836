//go:build linux

package sandbox

import (
	"math"
	"time"

	"golang.org/x/sys/unix"
)

// setCPULimit installs RLIMIT_CPU on an already-started child. This is the
// moral equivalent of setting the limit between fork and exec: the target
// program has not produced any work yet when the limit lands, and the
// kernel enforces it from then on without any supervision from us.
func setCPULimit(pid int, d time.Duration) (enforced bool, err error) {
	secs := uint64(math.Ceil(d.Seconds()))
	if secs == 0 {
		secs = 1
	}
	lim := unix.Rlimit{Cur: secs, Max: secs}
	if err := unix.Prlimit(pid, unix.RLIMIT_CPU, &lim, nil); err != nil {
		return false, err
	}
	return true, nil
}
