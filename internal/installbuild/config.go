package installbuild

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/knadh/koanf"
	yamlparser "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	fsprovider "github.com/knadh/koanf/providers/fs"
)

var configRegex = regexp.MustCompile(`^config\.(yaml|yml)$`)

// Common errors.
var (
	ErrNoConfigFile = errors.New("config file is not found") // ErrNoConfigFile when an explicit config file doesn't exist.
)

// envKeysReserved are app env variables which are not config values.
var envKeysReserved = []EnvVar{EnvVarLogLevel, EnvVarLogFormat, EnvVarQuietMode}

// ConfigLoader merges the configuration from layered sources.
// Later sources win: defaults, config file, environment, overrides.
type ConfigLoader struct {
	defaults  map[string]any
	overrides map[string]any
	root      fs.FS
	path      string
}

// NewConfigLoader creates a loader with default values.
// Keys may be nested with a dot delimiter, e.g. "compiler.path".
func NewConfigLoader(defaults map[string]any) *ConfigLoader {
	return &ConfigLoader{
		defaults:  defaults,
		overrides: make(map[string]any),
	}
}

// ConfigDir returns the default config directory name, e.g. ".installbuild".
func ConfigDir() string {
	return "." + name
}

// WithDir sets a directory where config.yaml or config.yml is discovered.
func (l *ConfigLoader) WithDir(root fs.FS) *ConfigLoader {
	l.root = root
	return l
}

// WithFile sets an explicit config file path. It must exist.
func (l *ConfigLoader) WithFile(path string) *ConfigLoader {
	l.path = path
	return l
}

// Override sets a value with the highest priority, e.g. from a command line flag.
func (l *ConfigLoader) Override(key string, v any) *ConfigLoader {
	l.overrides[key] = v
	return l
}

func findConfigFile(root fs.FS) fs.DirEntry {
	if root == nil {
		return nil
	}
	dir, err := fs.ReadDir(root, ".")
	if err != nil {
		return nil
	}
	for _, f := range dir {
		if !f.IsDir() && configRegex.MatchString(f.Name()) {
			return f
		}
	}
	return nil
}

// envKeyToConfig maps INSTALLBUILD_COMPILER__PATH to compiler.path.
func envKeyToConfig(s string) string {
	for _, r := range envKeysReserved {
		if s == r.String() {
			return ""
		}
	}
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix()))
	return strings.ReplaceAll(key, "__", ".")
}

// Load reads all sources and returns the merged [Config].
func (l *ConfigLoader) Load() (*Config, error) {
	k := koanf.New(".")
	cfg := &Config{koanf: k}
	if len(l.defaults) > 0 {
		if err := k.Load(confmap.Provider(l.defaults, "."), nil); err != nil {
			return nil, fmt.Errorf("config defaults: %w", err)
		}
	}

	switch {
	case l.path != "":
		if _, err := os.Stat(l.path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNoConfigFile, l.path)
		}
		if err := k.Load(file.Provider(l.path), yamlparser.Parser()); err != nil {
			return nil, fmt.Errorf("config %s: %w", l.path, err)
		}
		cfg.source = MustAbs(l.path)
	default:
		if f := findConfigFile(l.root); f != nil {
			if err := k.Load(fsprovider.Provider(l.root, f.Name()), yamlparser.Parser()); err != nil {
				return nil, fmt.Errorf("config %s: %w", f.Name(), err)
			}
			cfg.source = f.Name()
			if dir := fsRealpath(l.root); dir != "" {
				cfg.source = filepath.Join(dir, f.Name())
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix(), ".", envKeyToConfig), nil); err != nil {
		return nil, fmt.Errorf("config environment: %w", err)
	}
	if len(l.overrides) > 0 {
		if err := k.Load(confmap.Provider(l.overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("config overrides: %w", err)
		}
	}
	Log().Debug("configuration loaded", "source", cfg.source, "keys", k.Keys())
	return cfg, nil
}

// fsRealpath returns an absolute path of [os.DirFS], which has a string kind.
func fsRealpath(fsys fs.FS) string {
	rval := reflect.ValueOf(fsys)
	if rval.Kind() != reflect.String {
		return ""
	}
	return MustAbs(rval.String())
}

// Config is a merged app configuration.
type Config struct {
	mx     sync.Mutex
	koanf  *koanf.Koanf
	source string
}

// Source returns the config file path used, or empty string.
func (cfg *Config) Source() string {
	return cfg.source
}

// Exists checks if key exists in config. Key level delimiter is dot,
// for example `compiler.path`.
func (cfg *Config) Exists(key string) bool {
	cfg.mx.Lock()
	defer cfg.mx.Unlock()
	return cfg.koanf.Exists(key)
}

// Get decodes a value by key to a parameter v, which must be a pointer.
// An empty key decodes the whole config.
func (cfg *Config) Get(key string, v any) error {
	cfg.mx.Lock()
	defer cfg.mx.Unlock()
	return cfg.koanf.UnmarshalWithConf(key, v, koanf.UnmarshalConf{Tag: "yaml"})
}
