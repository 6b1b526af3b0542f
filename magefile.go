//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

// Build builds the frwolof binary.
func Build() error {
	mg.Deps(Vet)
	return sh.RunV("go", "build", "-o", "frwolof", "./cmd/frwolof")
}

// Install installs frwolof into GOPATH/bin.
func Install() error {
	return sh.RunV("go", "install", "./cmd/frwolof")
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes the built binary.
func Clean() error {
	return sh.Rm("frwolof")
}
