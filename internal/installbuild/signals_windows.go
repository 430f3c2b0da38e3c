//go:build windows

package installbuild

import "os"

func isRuntimeSig(_ os.Signal) bool {
	return false
}
