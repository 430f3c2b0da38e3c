//go:build unix

package installbuild

import (
	"os"

	"golang.org/x/sys/unix"
)

// isRuntimeSig reports signals used by the go runtime for goroutine preemption.
// They must not be forwarded to children.
func isRuntimeSig(s os.Signal) bool {
	return s == unix.SIGURG
}
