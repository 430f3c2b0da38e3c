// Package test contains functionality to test the application with testscript.
package test

import (
	"os"
	"path/filepath"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/launchrctl/installbuild/internal/installbuild"
)

// TestDateEpoch is 2024-03-07 12:00:00 UTC, build dates in scripts are stamped with it.
const TestDateEpoch = "1709812800"

// SetupEnvBuild puts $WORK/bin first in PATH so scripts can provide
// fake build tools, and pins the build date.
func SetupEnvBuild(env *testscript.Env) error {
	bin := filepath.Join(env.WorkDir, "bin")
	env.Setenv("PATH", bin+string(os.PathListSeparator)+env.Getenv("PATH"))
	env.Setenv(installbuild.EnvSourceDateEpoch, TestDateEpoch)
	return nil
}
