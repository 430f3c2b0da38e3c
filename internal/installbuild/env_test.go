package installbuild

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetenv(t *testing.T) {
	_ = syscall.Setenv("TEST_EXISTING_VAR", "existing_value")
	_ = syscall.Setenv("TEST_EMPTY_VAR", "")
	_ = syscall.Setenv("TEST_DEFAULT", "default_from_env")
	defer func() {
		_ = syscall.Unsetenv("TEST_EXISTING_VAR")
		_ = syscall.Unsetenv("TEST_EMPTY_VAR")
		_ = syscall.Unsetenv("TEST_DEFAULT")
	}()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"dollar sign", "$", "$"},
		{"existing variable", "TEST_EXISTING_VAR", "existing_value"},
		{"non-existing variable", "TEST_NON_EXISTING", ""},

		{"var-default with existing var", "TEST_EXISTING_VAR-fallback", "existing_value"},
		{"var-default with non-existing var", "TEST_NON_EXISTING-fallback", "fallback"},
		{"var-default with empty var", "TEST_EMPTY_VAR-fallback", ""},

		{"var:-default with existing var", "TEST_EXISTING_VAR:-fallback", "existing_value"},
		{"var:-default with non-existing var", "TEST_NON_EXISTING:-fallback", "fallback"},
		{"var:-default with empty var", "TEST_EMPTY_VAR:-fallback", "fallback"},

		{"var+alt with existing var", "TEST_EXISTING_VAR+alternative", "alternative"},
		{"var+alt with non-existing var", "TEST_NON_EXISTING+alternative", ""},
		{"var+alt with empty var", "TEST_EMPTY_VAR+alternative", "alternative"},

		{"var:+alt with existing var", "TEST_EXISTING_VAR:+alternative", "alternative"},
		{"var:+alt with non-existing var", "TEST_NON_EXISTING:+alternative", ""},
		{"var:+alt with empty var", "TEST_EMPTY_VAR:+alternative", ""},

		{"default with variable expansion", "TEST_NON_EXISTING:-$TEST_DEFAULT", "default_from_env"},
		{"alternative with variable expansion", "TEST_EXISTING_VAR+$TEST_DEFAULT", "default_from_env"},
		{"var:+alt containing dash", "TEST_EXISTING_VAR:+x-y", "x-y"},
		{"var:-default containing plus", "TEST_NON_EXISTING:-a+b", "a+b"},
		{"var-default containing colon", "TEST_NON_EXISTING-c:-d", "c:-d"},
		{"unknown operator", "TEST_EXISTING_VAR?x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Getenv(tt.input))
		})
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_SOURCE_ROOT", "/src")
	t.Setenv("TEST_ROOT_WITH_REFS", "/srv/build$TEST_SOURCE_ROOT/%TEST_SOURCE_ROOT%")
	t.Setenv("TEST_ALT", "set")
	_ = os.Unsetenv("TEST_UNSET_ROOT")

	tests := []struct {
		name       string
		input      string
		expected   string
		unresolved []string
	}{
		{"no references", `C:\Program Files (x86)\Inno Setup 5\iscc.exe`, `C:\Program Files (x86)\Inno Setup 5\iscc.exe`, nil},
		{"shell braces", "${TEST_SOURCE_ROOT}/Build", "/src/Build", nil},
		{"shell plain", "$TEST_SOURCE_ROOT/Build", "/src/Build", nil},
		{"windows style", `%TEST_SOURCE_ROOT%\Build`, `/src\Build`, nil},
		{"unset braces kept", "${TEST_UNSET_ROOT}/Build", "${TEST_UNSET_ROOT}/Build", []string{"TEST_UNSET_ROOT"}},
		{"unset plain kept", "$TEST_UNSET_ROOT/Build", "${TEST_UNSET_ROOT}/Build", []string{"TEST_UNSET_ROOT"}},
		{"unset windows kept", `%TEST_UNSET_ROOT%\Build`, `%TEST_UNSET_ROOT%\Build`, []string{"TEST_UNSET_ROOT"}},
		{"unset with default", "${TEST_UNSET_ROOT:-/opt/zero}", "/opt/zero", nil},
		{"windows default in shell form", "${TEST_UNSET_ROOT:-%TEST_SOURCE_ROOT%}", "/src", nil},
		{"windows value is literal", "%TEST_ROOT_WITH_REFS%", "/srv/build$TEST_SOURCE_ROOT/%TEST_SOURCE_ROOT%", nil},
		{"shell value is literal", "${TEST_ROOT_WITH_REFS}", "/srv/build$TEST_SOURCE_ROOT/%TEST_SOURCE_ROOT%", nil},
		{"alternative with dash", "${TEST_ALT:+x-y}", "x-y", nil},
		{"positional kept", "/a/$1/b", "/a/${1}/b", []string{"1"}},
		{"special kept", "/a/${@}/b", "/a/${@}/b", []string{"@"}},
		{"bad operator kept", "${TEST_SOURCE_ROOT?x}", "${TEST_SOURCE_ROOT?x}", []string{"TEST_SOURCE_ROOT?x"}},
		{"escaped dollar", "$$TEST_SOURCE_ROOT", "$TEST_SOURCE_ROOT", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, unresolved := ExpandEnv(tt.input)
			assert.Equal(t, tt.expected, res)
			assert.Equal(t, tt.unresolved, unresolved)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_DOTENV_NEW=from_file\nTEST_DOTENV_SET=from_file\n"), 0600))
	t.Setenv("TEST_DOTENV_SET", "from_env")
	t.Cleanup(func() { _ = os.Unsetenv("TEST_DOTENV_NEW") })

	err := LoadDotEnv(filepath.Join(dir, "missing.env"), path, "")
	require.NoError(t, err)
	assert.Equal(t, "from_file", os.Getenv("TEST_DOTENV_NEW"))
	assert.Equal(t, "from_env", os.Getenv("TEST_DOTENV_SET"))
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "INSTALLBUILD_LOG_LEVEL", EnvVarLogLevel.String())
	assert.Equal(t, "INSTALLBUILD_QUIET_MODE=1", EnvVarQuietMode.EnvString("1"))
}
