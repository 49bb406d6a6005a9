// Package testutil starts shared database containers for the record index
// integration tests. Each container is started once per test binary.
package testutil

import (
	"testing"
)

// skipIfShort skips container-backed tests under -short.
func skipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in -short mode")
	}
}

// skipOnStartErr skips the test when the container could not be started,
// typically because no Docker daemon is reachable.
func skipOnStartErr(t *testing.T, name string, err error) {
	t.Helper()
	if err != nil {
		t.Skipf("%s container unavailable: %v", name, err)
	}
}
