//go:build !windows && !darwin

package installer

// Desktop file managers don't agree on a way to select a file.
func defaultRevealCommand() []string {
	return nil
}
