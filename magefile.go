//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

// Build compiles every executable into ./bin
func Build() error {
	mg.Deps(BuildQvectors)
	mg.Deps(BuildMeasureCompression)
	fmt.Println("Compilation finished")
	return nil
}

func BuildQvectors() error {
	fmt.Println("Building qvectors executable...")
	return goCommand("build", "-o", "./bin/qvectors", "./qvectors")
}

func BuildMeasureCompression() error {
	fmt.Println("Building measureCompression executable...")
	return goCommand("build", "-o", "./bin/measureCompression", "./measureCompression")
}

// Test runs the unit tests of every package
func Test() error {
	fmt.Println("Running tests...")
	return goCommand("test", "./...")
}

// goCommand runs the go tool with cgo enabled, forwarding the HDF5 flags.
func goCommand(args ...string) error {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
