package installer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchrctl/installbuild/internal/installbuild"
)

func TestParseRevisionLabel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		exp  string
	}{
		{"number and hash", "1234:abcdef\n", "1234"},
		{"surrounding spaces", "  42 :abcd  ", "42"},
		{"several colons", "1:2:3", "1"},
		{"no colon", " tip\n", "tip"},
		{"empty", "", ""},
		{"only colon", ":abcdef", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.exp, ParseRevisionLabel(tt.in))
		})
	}
}

func TestStampedName(t *testing.T) {
	t.Parallel()
	date := DateStamp(time.Date(2024, time.March, 7, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, ".2024.03.07.", date)
	assert.Equal(t, ".1999.12.31.", DateStamp(time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC)))

	name := StampedName("ZeroEngineSetup", date, ParseRevisionLabel("42:abcd"), ".exe")
	assert.Equal(t, "ZeroEngineSetup.2024.03.07.42.exe", name)
	assert.NotContains(t, name, ":")
}

func TestClockFromEnv(t *testing.T) {
	t.Setenv(installbuild.EnvSourceDateEpoch, "1709812800")
	now, err := ClockFromEnv()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC), now())
	assert.Equal(t, ".2024.03.07.", DateStamp(now()))

	t.Setenv(installbuild.EnvSourceDateEpoch, "yesterday")
	_, err = ClockFromEnv()
	assert.Error(t, err)

	t.Setenv(installbuild.EnvSourceDateEpoch, "")
	now, err = ClockFromEnv()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), now(), time.Minute)
}
