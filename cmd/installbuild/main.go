// Package executes installbuild application.
package main

import (
	"os"

	"github.com/launchrctl/installbuild"
)

func main() {
	os.Exit(installbuild.Run())
}
