//go:build mage

// Package main provides build targets for the HBnB API server using Mage.
//
// Usage:
//
//	mage build          Compile the hbnb binary to bin/
//	mage test:unit      Run unit tests
//	mage test:e2e       Run the e2e suite against a running database
//	mage migrate        Apply database migrations with the built binary
//	mage serve          Build and start the server
//	mage clean          Remove build artifacts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "hbnb"
	binaryDir  = "bin"
)

var binaryPath = filepath.Join(binaryDir, binaryName)

// Build compiles the hbnb binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", binaryPath, ".")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}

// Test groups test targets (unit, e2e).
type Test mg.Namespace

// Unit runs the package tests.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// E2E runs the e2e-tagged suite. It expects the database from the
// environment (DB_HOST, DB_USER, ...).
func (Test) E2E() error {
	return sh.RunV(binGo, "test", "-tags", "e2e", "-count=1", "./internal/tests/e2e/...")
}

// Migrate applies all up migrations.
func Migrate() error {
	mg.Deps(Build)
	return sh.RunV(binaryPath, "migrate", "up")
}

// Serve builds and starts the server.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binaryPath, "server")
}
