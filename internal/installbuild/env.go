package installbuild

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"slices"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
)

// Application environment variables.
const (
	// EnvVarLogLevel defines currently set log level, see --verbose flag.
	EnvVarLogLevel = EnvVar("log_level")
	// EnvVarLogFormat defines currently set log format, see --log-format flag.
	EnvVarLogFormat = EnvVar("log_format")
	// EnvVarQuietMode defines if the application should output anything, see --quiet flag.
	EnvVarQuietMode = EnvVar("quiet_mode")
)

// EnvSourceDateEpoch pins the build date for reproducible builds.
// See https://reproducible-builds.org/specs/source-date-epoch/.
const EnvSourceDateEpoch = "SOURCE_DATE_EPOCH"

// EnvVar defines an environment variable prefixed by the app name.
// For example, "log_level" is accessed as "INSTALLBUILD_LOG_LEVEL".
type EnvVar string

// String implements [fmt.Stringer] interface.
func (key EnvVar) String() string {
	return strings.ToUpper(EnvPrefix() + string(key))
}

// EnvString returns an os string of env variable with a value val.
func (key EnvVar) EnvString(val string) string {
	return key.String() + "=" + val
}

// Get returns env variable value.
func (key EnvVar) Get() string {
	return os.Getenv(key.String())
}

// EnvPrefix returns a prefix of all app environment variables, e.g. "INSTALLBUILD_".
func EnvPrefix() string {
	return strings.ToUpper(name) + "_"
}

// Getenv is an environment variable expand callback for [os.Expand].
// It supports shell parameter expansion forms ${var:-default}, ${var-default},
// ${var:+alternative} and ${var+alternative}.
func Getenv(key string) string {
	return getenv(key, syscall.Getenv)
}

type envLookupFn = func(string) (string, bool)

func getenv(key string, lookup envLookupFn) string {
	if key == "$" {
		return "$"
	}

	name, op, arg := splitEnvExpansion(key)
	v, exists := lookup(name)
	switch op {
	case "":
		return v
	case ":-":
		if exists && v != "" {
			return v
		}
		return envExpandValue(arg, lookup)
	case "-":
		if exists {
			return v
		}
		return envExpandValue(arg, lookup)
	case ":+":
		if exists && v != "" {
			return envExpandValue(arg, lookup)
		}
	case "+":
		if exists {
			return envExpandValue(arg, lookup)
		}
	}
	return ""
}

var envExpansionOps = []string{":-", ":+", "-", "+"}

// splitEnvExpansion splits "name:-arg" into its parts.
// An unknown operator is returned with the rest of the key and an empty arg.
func splitEnvExpansion(key string) (name, op, arg string) {
	i := 0
	for i < len(key) && isEnvNameChar(key[i]) {
		i++
	}
	name, rest := key[:i], key[i:]
	for _, o := range envExpansionOps {
		if strings.HasPrefix(rest, o) {
			return name, o, rest[len(o):]
		}
	}
	return name, rest, ""
}

func isEnvNameChar(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func envExpandValue(value string, lookup envLookupFn) string {
	if strings.Contains(value, "$") {
		return os.Expand(value, func(key string) string { return getenv(key, lookup) })
	}
	return value
}

var (
	winEnvRegex   = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)
	plainVarRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// envPercentMark stands for "%" in substituted values until the Windows style pass is done.
// Environment values never contain NUL.
const envPercentMark = "\x00"

// ExpandEnv expands environment variable references in s.
// Both shell style ($VAR, ${VAR}, ${VAR:-default}) and Windows style (%VAR%)
// references are supported. Substituted values are inserted literally and
// never expanded again. A reference to an unset variable is kept in the result,
// and its name is returned in unresolved. So are references which are not
// a variable name, like "$1".
func ExpandEnv(s string) (res string, unresolved []string) {
	lookup := func(key string) (string, bool) {
		v, ok := syscall.Getenv(key)
		return strings.ReplaceAll(v, "%", envPercentMark), ok
	}
	res = os.Expand(s, func(key string) string {
		if key == "$" {
			return "$"
		}
		name, op, _ := splitEnvExpansion(key)
		if !plainVarRegex.MatchString(name) || (op != "" && !slices.Contains(envExpansionOps, op)) {
			unresolved = append(unresolved, key)
			return "${" + key + "}"
		}
		if _, ok := syscall.Getenv(name); !ok && op == "" {
			unresolved = append(unresolved, name)
			return "${" + name + "}"
		}
		return getenv(key, lookup)
	})
	res = winEnvRegex.ReplaceAllStringFunc(res, func(m string) string {
		key := m[1 : len(m)-1]
		if v, ok := syscall.Getenv(key); ok {
			return v
		}
		unresolved = append(unresolved, key)
		return m
	})
	return strings.ReplaceAll(res, envPercentMark, "%"), unresolved
}

// LoadDotEnv loads variables from dotenv files into the process environment.
// Variables which are already set are never overridden.
// Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			Log().Debug("dotenv file not found, skipping", "path", p)
			continue
		}
		existing = append(existing, p)
	}
	if len(existing) == 0 {
		return nil
	}
	Log().Debug("loading dotenv files", "paths", existing)
	return godotenv.Load(existing...)
}
