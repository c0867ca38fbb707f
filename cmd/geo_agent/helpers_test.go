package main

import (
	"os"
	"path/filepath"
	"testing"
)

// getBinaryPath returns the path to the built geo_agent binary, skipping the
// test when it has not been built.
func getBinaryPath(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", "geo_agent")
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/geo_agent ./cmd/geo_agent'", binaryPath)
	}
	return binaryPath
}
