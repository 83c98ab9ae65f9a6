package gpu

import (
	"context"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestSupportedBackendsNonEmpty(t *testing.T) {
	backends := SupportedBackends()
	if len(backends) == 0 {
		t.Fatal("SupportedBackends() returned no backends for this host")
	}
}

func TestBackendString(t *testing.T) {
	cases := map[Backend]string{
		Auto:   "auto",
		D3D12:  "d3d12",
		Vulkan: "vulkan",
		Metal:  "metal",
	}
	for b, want := range cases {
		if got := b.String(); got != want {
			t.Errorf("Backend(%d).String() = %q, want %q", b, got, want)
		}
	}
}

func TestNewFactoryForceSoftware(t *testing.T) {
	dev, err := NewFactory(Config{ForceSoftwareDevice: true})
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	if _, ok := dev.(*SoftwareDevice); !ok {
		t.Fatalf("NewFactory with ForceSoftwareDevice did not return a *SoftwareDevice, got %T", dev)
	}
}

func TestSoftwareDeviceBufferRoundTrip(t *testing.T) {
	dev := NewSoftwareDevice()
	buf, err := dev.CreateBuffer(BufferDescriptor{
		Label: "test",
		Size:  16,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}

	payload := []byte{1, 2, 3, 4}
	if err := dev.WriteBuffer(buf, 0, payload); err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}

	dst := make([]byte, 4)
	if err := dev.ReadBuffer(context.Background(), dst, buf, 0, 4); err != nil {
		t.Fatalf("ReadBuffer: %v", err)
	}
	for i, b := range payload {
		if dst[i] != b {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], b)
		}
	}

	if err := dev.ReleaseBuffer(buf); err != nil {
		t.Fatalf("ReleaseBuffer: %v", err)
	}
	if err := dev.ReleaseBuffer(buf); err != ErrUnknownBuffer {
		t.Errorf("second ReleaseBuffer error = %v, want ErrUnknownBuffer", err)
	}
}

func TestSoftwareDeviceReadBufferRequiresMapRead(t *testing.T) {
	dev := NewSoftwareDevice()
	buf, err := dev.CreateBuffer(BufferDescriptor{Size: 4, Usage: gputypes.BufferUsageStorage})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	dst := make([]byte, 4)
	if err := dev.ReadBuffer(context.Background(), dst, buf, 0, 4); err != ErrBufferNotMappable {
		t.Errorf("ReadBuffer error = %v, want ErrBufferNotMappable", err)
	}
}

func TestSoftwareDeviceRecordingLifecycle(t *testing.T) {
	dev := NewSoftwareDevice()
	if err := dev.BeginRecording(); err != nil {
		t.Fatalf("BeginRecording: %v", err)
	}
	if err := dev.EndRecording(); err != nil {
		t.Fatalf("EndRecording: %v", err)
	}
	dev.GarbageCollect()
}
