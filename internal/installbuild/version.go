package installbuild

import (
	"bytes"
	"fmt"
	"runtime"
	"runtime/debug"
	"text/template"
)

var name = "installbuild"

// AppVersion stores application version.
type AppVersion struct {
	Name      string
	Version   string
	OS        string
	Arch      string
	GoVersion string
	BuildDate string
	GitHash   string
	BuiltWith string
}

// Name returns the application name.
func Name() string { return name }

// SetVersion sets the application version info. Empty values are
// filled from the binary build info.
func SetVersion(v *AppVersion) {
	if v.Name != "" {
		name = v.Name
	}
	v.Name = name
	if v.OS == "" {
		v.OS = runtime.GOOS
	}
	if v.Arch == "" {
		v.Arch = runtime.GOARCH
	}
	fillBuildInfo(v)
}

func fillBuildInfo(v *AppVersion) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if v.GoVersion == "" {
		v.GoVersion = bi.GoVersion
	}
	if v.Version == "" || v.Version == "dev" {
		// Installed with "go install module@version".
		if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v.Version = bi.Main.Version
		}
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if v.GitHash == "" {
				v.GitHash = s.Value
			}
		case "vcs.time":
			if v.BuildDate == "" {
				v.BuildDate = s.Value
			}
		}
	}
}

// String implements [fmt.Stringer] interface.
func (v *AppVersion) String() string {
	return v.Full()
}

// Short outputs a short version string.
func (v *AppVersion) Short() string {
	return fmt.Sprintf("%s version %s %s/%s", v.Name, v.Version, v.OS, v.Arch)
}

// Full outputs version string in a full format.
func (v *AppVersion) Full() string {
	b := &bytes.Buffer{}
	if err := versionTmpl.Execute(b, v); err != nil {
		panic(err)
	}
	return b.String()
}

var versionTmpl = template.Must(template.New("version").Parse(versionTmplStr))

const versionTmplStr = `
{{- .Short}}
{{- if .BuiltWith}}
Built with {{.BuiltWith}}
{{- end}}
{{- if .GoVersion}}
Go version: {{.GoVersion}}
{{- end}}
{{- if .GitHash}}
Revision: {{.GitHash}}
{{- end}}
{{- if .BuildDate}}
Build date: {{.BuildDate}}
{{- end}}
`
