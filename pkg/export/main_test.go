package export

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	// keep remembered wizard answers out of the real home directory
	dir, err := os.MkdirTemp("", "mindview-export-test")
	if err != nil {
		panic(err)
	}
	os.Setenv("XDG_STATE_HOME", dir)

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}
