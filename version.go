package installbuild

import (
	"github.com/launchrctl/installbuild/internal/installbuild"
)

// Variables for version provided by ldflags.
var (
	name      = "installbuild"
	version   = "dev"
	builtWith string
	gitHash   string
	buildDate string
)

func setAppVersion() *AppVersion {
	v := &AppVersion{
		Name:      name,
		Version:   version,
		BuiltWith: builtWith,
		GitHash:   gitHash,
		BuildDate: buildDate,
	}
	installbuild.SetVersion(v)
	return v
}
