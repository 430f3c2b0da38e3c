package installbuild

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/launchrctl/installbuild/internal/installbuild"
	"github.com/launchrctl/installbuild/pkg/installer"
)

const defaultEnvFile = ".env"

// configFlags are command line overrides of the configuration.
type configFlags struct {
	file    string
	envFile string

	sourceRoot     string
	compiler       string
	script         string
	vcsCommand     string
	noReveal       bool
	nonInteractive bool

	pflags *pflag.FlagSet
}

func (f *configFlags) register(pflags *pflag.FlagSet) {
	f.pflags = pflags
	pflags.StringVar(&f.file, "config", "", "path to a config file (default "+filepath.Join(installbuild.ConfigDir(), "config.yaml")+")")
	pflags.StringVar(&f.envFile, "env-file", defaultEnvFile, "dotenv file loaded before reading the environment")
	pflags.StringVar(&f.sourceRoot, "source-root", "", "source tree root, overrides source_root")
	pflags.StringVar(&f.compiler, "compiler", "", "installer compiler executable, overrides compiler.path")
	pflags.StringVar(&f.script, "script", "", "installer script relative to the build dir, overrides compiler.script")
	pflags.StringVar(&f.vcsCommand, "vcs-command", "", "command printing the current revision, overrides vcs_command")
	pflags.BoolVar(&f.noReveal, "no-reveal", false, "don't open a file browser with the installer")
	pflags.BoolVar(&f.nonInteractive, "non-interactive", false, "never wait for a key press")
}

// overrides returns config values of the changed flags.
func (f *configFlags) overrides() map[string]any {
	res := make(map[string]any)
	set := func(flag, key string, v any) {
		if f.pflags.Changed(flag) {
			res[key] = v
		}
	}
	set("source-root", "source_root", f.sourceRoot)
	set("compiler", "compiler.path", f.compiler)
	set("script", "compiler.script", f.script)
	set("vcs-command", "vcs_command", f.vcsCommand)
	set("no-reveal", "reveal.enabled", !f.noReveal)
	set("non-interactive", "interactive", !f.nonInteractive)
	return res
}

// loadConfig merges defaults, the config file, the environment and flags.
func (app *appImpl) loadConfig() (installer.Config, error) {
	var cfg installer.Config
	f := &app.cfgFlags
	if f.pflags.Changed("env-file") {
		if _, err := os.Stat(f.envFile); err != nil {
			return cfg, fmt.Errorf("env file: %w", err)
		}
	}
	if err := installbuild.LoadDotEnv(f.envFile); err != nil {
		return cfg, fmt.Errorf("env file %s: %w", f.envFile, err)
	}

	loader := installbuild.NewConfigLoader(installer.DefaultConfig().Map()).
		WithDir(os.DirFS(filepath.Join(app.GetWD(), app.cfgDir))).
		WithFile(f.file)
	for k, v := range f.overrides() {
		loader.Override(k, v)
	}
	loaded, err := loader.Load()
	if err != nil {
		return cfg, err
	}
	if err = loaded.Get("", &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return cfg, err
	}
	if src := loaded.Source(); src != "" {
		Log().Info("using config file", "path", src)
	}
	return cfg, nil
}

func (app *appImpl) buildCmd() *Command {
	return &Command{
		Use:   "build",
		Short: "Compile the installer and stamp it with the date and the revision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *Command, _ []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			now, err := installer.ClockFromEnv()
			if err != nil {
				return err
			}
			b := installer.New(cfg,
				installer.WithStreams(app.Streams()),
				installer.WithClock(now),
			)
			a, err := b.Build(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), a.Path)
			return err
		},
	}
}

func (app *appImpl) configCmd() *Command {
	return &Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *Command, _ []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			expanded, unresolved := cfg.Expand()
			for _, v := range unresolved {
				Term().Warning().Printfln("Environment variable %s is not set", v)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err = enc.Encode(expanded.Map()); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
