//go:build darwin

package installer

func defaultRevealCommand() []string {
	return []string{"open", "-R", revealPathPlaceholder}
}
