package installbuild

import (
	"context"
	"os"
	gosignal "os/signal"

	"github.com/moby/sys/signal"
)

// HandleSignals forwards received signals to killFn until ctx is done or sigc is closed.
func HandleSignals(ctx context.Context, sigc <-chan os.Signal, killFn func(s os.Signal, sig string) error) {
	for {
		var s os.Signal
		select {
		case v, ok := <-sigc:
			if !ok {
				return
			}
			s = v
		case <-ctx.Done():
			return
		}

		if s == signal.SIGCHLD || s == signal.SIGPIPE || isRuntimeSig(s) {
			continue
		}
		sig := signalName(s)
		if sig == "" {
			continue
		}
		if err := killFn(s, sig); err != nil {
			Log().Debug("error sending signal", "error", err, "sig", sig)
		}
	}
}

func signalName(s os.Signal) string {
	for name, n := range signal.SignalMap {
		if n == s {
			return name
		}
	}
	return ""
}

// NotifySignals starts watching signals. All signals are watched if none given.
func NotifySignals(sig ...os.Signal) chan os.Signal {
	sigc := make(chan os.Signal, 128)
	gosignal.Notify(sigc, sig...)
	return sigc
}

// StopCatchSignals stops catching the signals and closes the channel.
func StopCatchSignals(sigc chan os.Signal) {
	gosignal.Stop(sigc)
	close(sigc)
}
