package orchestrator

import (
	"context"
	"testing"

	"github.com/zibravdb/zibravdb-go/compressor"
	"github.com/zibravdb/zibravdb-go/gpu"
)

func TestManagerOpenReturnsSameHandleForSameFingerprint(t *testing.T) {
	m := NewManager()
	cfg := gpu.Config{ForceSoftwareDevice: true}

	o1, c1, err := m.Open(cfg, "file-a")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	o2, c2, err := m.Open(cfg, "file-a")
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if o1 != o2 {
		t.Error("Open with the same fingerprint returned different Orchestrators")
	}
	if c1 != c2 {
		t.Error("Open with the same fingerprint returned different FrameCaches")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestManagerOpenDistinctFingerprintsDistinctHandles(t *testing.T) {
	m := NewManager()
	cfg := gpu.Config{ForceSoftwareDevice: true}

	o1, _, err := m.Open(cfg, "file-a")
	if err != nil {
		t.Fatalf("Open(file-a): %v", err)
	}
	o2, _, err := m.Open(cfg, "file-b")
	if err != nil {
		t.Fatalf("Open(file-b): %v", err)
	}
	if o1 == o2 {
		t.Error("distinct fingerprints shared an Orchestrator")
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestManagerBindBeforeOpenIsInternal(t *testing.T) {
	m := NewManager()
	if err := m.Bind(context.Background(), "missing", nil); err != ErrInternal {
		t.Errorf("Bind before Open error = %v, want ErrInternal", err)
	}
}

func TestManagerBindAndRelease(t *testing.T) {
	m := NewManager()
	cfg := gpu.Config{ForceSoftwareDevice: true}
	file := buildSingleFrameFile(t)

	_, _, err := m.Open(cfg, "file-a")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	o, _, _ := m.Open(cfg, "file-a")
	device, ok := o.Device().(*gpu.SoftwareDevice)
	if !ok {
		t.Fatalf("Device() = %T, want *gpu.SoftwareDevice", o.Device())
	}
	comp := compressor.NewReferenceCompressor(file, device)

	if err := m.Bind(context.Background(), "file-a", comp); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if o.State() != Bound {
		t.Fatalf("State() after Bind = %v, want Bound", o.State())
	}

	if err := m.Release("file-a"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() after Release = %d, want 0", m.Len())
	}

	if err := m.Release("file-a"); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}

func TestManagerFrameCacheTracksMaterializedFrames(t *testing.T) {
	m := NewManager()
	cfg := gpu.Config{ForceSoftwareDevice: true}

	_, fc, err := m.Open(cfg, "file-a")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := fc.Lookup(3); ok {
		t.Fatal("Lookup on empty FrameCache found an entry")
	}
	fc.Insert(3, "/tmp/frame-3.bin")
	path, ok := fc.Lookup(3)
	if !ok || path != "/tmp/frame-3.bin" {
		t.Errorf("Lookup(3) = %q, %v, want /tmp/frame-3.bin, true", path, ok)
	}
}
