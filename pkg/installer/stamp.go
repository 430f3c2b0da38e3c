package installer

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/launchrctl/installbuild/internal/installbuild"
)

// DateLayout formats a date stamp as .YYYY.MM.DD. in [time.Time.Format] terms.
const DateLayout = ".2006.01.02."

// ParseRevisionLabel returns the revision label from a version control output.
// The label is the text before the first colon, "1234:abcdef" gives "1234".
// Output without a colon is used whole. Surrounding whitespace is trimmed.
func ParseRevisionLabel(out string) string {
	label, _, _ := strings.Cut(out, ":")
	return strings.TrimSpace(label)
}

// DateStamp formats t as .YYYY.MM.DD.
func DateStamp(t time.Time) string {
	return t.Format(DateLayout)
}

// StampedName builds the installer file name, e.g. ZeroEngineSetup.2024.03.07.42.exe.
func StampedName(prefix, dateStamp, label, ext string) string {
	return prefix + dateStamp + label + ext
}

// ClockFromEnv returns the current time source. When SOURCE_DATE_EPOCH is set,
// the time is pinned to it in UTC.
func ClockFromEnv() (func() time.Time, error) {
	epoch, ok := os.LookupEnv(installbuild.EnvSourceDateEpoch)
	if !ok || epoch == "" {
		return time.Now, nil
	}
	sec, err := strconv.ParseInt(strings.TrimSpace(epoch), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", installbuild.EnvSourceDateEpoch, epoch, err)
	}
	t := time.Unix(sec, 0).UTC()
	return func() time.Time { return t }, nil
}
