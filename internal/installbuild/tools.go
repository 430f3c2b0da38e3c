package installbuild

import (
	"path/filepath"
	"time"
)

// MustAbs returns absolute filepath and panics on error.
func MustAbs(path string) string {
	abs, err := filepath.Abs(filepath.Clean(filepath.FromSlash(path)))
	if err != nil {
		panic(err)
	}
	return abs
}

// EstimateTime returns a function that runs callback with
// the elapsed time between the call to timer and the call to
// the returned function. The returned function is intended to
// be used in a defer statement:
//
// defer EstimateTime(func (diff time.Duration) { ... })().
func EstimateTime(fn func(diff time.Duration)) func() {
	start := time.Now()
	return func() {
		fn(time.Since(start))
	}
}
