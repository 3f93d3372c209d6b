//go:build !windows

package irsdk_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"simrelative/pkg/irsdk"
	"simrelative/pkg/irsdk/irsdktest"
)

func TestFileOpener(t *testing.T) {
	region := irsdktest.NewBuilder().Var("PlayerCarIdx", irsdk.TypeInt, 1).Build()
	region.SetInt(0, "PlayerCarIdx", 0, 17)
	region.SetTick(0, 1)

	path := filepath.Join(t.TempDir(), "IRSDKMemMapFileName")
	if err := os.WriteFile(path, region.Mem, 0o600); err != nil {
		t.Fatal(err)
	}

	c := irsdk.NewClient(irsdk.WithRegionName(path))
	if err := c.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Shutdown()

	if got := c.Int("PlayerCarIdx", -1); got != 17 {
		t.Errorf("PlayerCarIdx = %d, want 17", got)
	}
}

func TestFileOpenerMissing(t *testing.T) {
	c := irsdk.NewClient(irsdk.WithRegionName(filepath.Join(t.TempDir(), "absent")))
	err := c.Open()
	if !errors.Is(err, irsdk.ErrConnectionUnavailable) {
		t.Fatalf("Open: got %v, want ErrConnectionUnavailable", err)
	}
}
