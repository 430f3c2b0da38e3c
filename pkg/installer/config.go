package installer

import (
	_ "embed"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/launchrctl/installbuild/internal/installbuild"
	"github.com/launchrctl/installbuild/pkg/jsonschema"
)

//go:embed config.schema.json
var configSchema []byte

const configSchemaID = "installbuild-config.schema.json"

// Config is the orchestrator configuration. Path values may reference
// environment variables, see [installbuild.ExpandEnv].
type Config struct {
	SourceRoot  string         `yaml:"source_root" json:"source_root"`
	BuildDir    string         `yaml:"build_dir" json:"build_dir"`
	Product     string         `yaml:"product" json:"product"`
	Compiler    CompilerConfig `yaml:"compiler" json:"compiler"`
	VCSCommand  string         `yaml:"vcs_command" json:"vcs_command"`
	Output      OutputConfig   `yaml:"output" json:"output"`
	Reveal      RevealConfig   `yaml:"reveal" json:"reveal"`
	Interactive bool           `yaml:"interactive" json:"interactive"`
}

// CompilerConfig defines the installer compiler invocation.
type CompilerConfig struct {
	Path   string `yaml:"path" json:"path"`     // Path is the compiler executable.
	Script string `yaml:"script" json:"script"` // Script is relative to the build dir.
}

// OutputConfig defines where the compiler writes the installer.
type OutputConfig struct {
	Dir  string `yaml:"dir" json:"dir"`   // Dir is relative to the build dir.
	Name string `yaml:"name" json:"name"` // Name is the installer file name without extension.
	Ext  string `yaml:"ext" json:"ext"`   // Ext is the installer file extension with a leading dot.
}

// RevealConfig defines how the stamped installer is shown in a file browser.
type RevealConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Command overrides the platform file browser. Arguments may contain
	// {path} and {dir} placeholders, the path is appended if none is used.
	Command []string `yaml:"command" json:"command"`
}

// DefaultCompilerPath returns the default installer compiler location.
func DefaultCompilerPath() string {
	if runtime.GOOS == "windows" {
		return `C:\Program Files (x86)\Inno Setup 5\iscc.exe`
	}
	return "iscc"
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		SourceRoot: "${ZERO_SOURCE}",
		BuildDir:   "Build",
		Product:    "Zero Engine",
		Compiler: CompilerConfig{
			Path:   DefaultCompilerPath(),
			Script: "ZeroEngineInstall.iss",
		},
		VCSCommand: "hg tip -q",
		Output: OutputConfig{
			Dir:  "Output",
			Name: "ZeroEngineSetup",
			Ext:  ".exe",
		},
		Reveal:      RevealConfig{Enabled: true},
		Interactive: true,
	}
}

// Map returns the config as a nested map keyed like the yaml document.
func (c Config) Map() map[string]any {
	return map[string]any{
		"source_root": c.SourceRoot,
		"build_dir":   c.BuildDir,
		"product":     c.Product,
		"compiler": map[string]any{
			"path":   c.Compiler.Path,
			"script": c.Compiler.Script,
		},
		"vcs_command": c.VCSCommand,
		"output": map[string]any{
			"dir":  c.Output.Dir,
			"name": c.Output.Name,
			"ext":  c.Output.Ext,
		},
		"reveal": map[string]any{
			"enabled": c.Reveal.Enabled,
			"command": slices.Clone(c.Reveal.Command),
		},
		"interactive": c.Interactive,
	}
}

// Validate checks the config against its json schema.
func (c Config) Validate() error {
	return jsonschema.Validate(configSchemaID, configSchema, c)
}

// Expand returns a copy of the config with environment references expanded
// in path values. References to unset variables are kept literally and their
// names are returned in unresolved.
func (c Config) Expand() (Config, []string) {
	var unresolved []string
	expand := func(s string) string {
		res, missing := installbuild.ExpandEnv(s)
		for _, m := range missing {
			if !slices.Contains(unresolved, m) {
				unresolved = append(unresolved, m)
			}
		}
		return res
	}
	c.SourceRoot = expand(c.SourceRoot)
	c.BuildDir = expand(c.BuildDir)
	c.Compiler.Path = expand(c.Compiler.Path)
	c.Compiler.Script = expand(c.Compiler.Script)
	c.Output.Dir = expand(c.Output.Dir)
	return c, unresolved
}

// BuildPath returns the build directory, e.g. <source_root>/Build.
func (c Config) BuildPath() string {
	return filepath.Join(c.SourceRoot, c.BuildDir)
}

// ScriptPath returns the compiler script path, e.g. <source_root>/Build/ZeroEngineInstall.iss.
func (c Config) ScriptPath() string {
	return filepath.Join(c.BuildPath(), c.Compiler.Script)
}

// OutputPath returns the compiler output directory, e.g. <source_root>/Build/Output.
func (c Config) OutputPath() string {
	return filepath.Join(c.BuildPath(), c.Output.Dir)
}

// OutputFile returns the unstamped installer path produced by the compiler.
func (c Config) OutputFile() string {
	return filepath.Join(c.OutputPath(), c.Output.Name+c.Output.Ext)
}
