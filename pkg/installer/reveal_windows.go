//go:build windows

package installer

func defaultRevealCommand() []string {
	return []string{"explorer.exe", "/select," + revealPathPlaceholder}
}
