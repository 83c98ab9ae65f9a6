// Package gpu defines the decompression orchestrator's GPU RHI
// collaborator contract, plus an in-process SoftwareDevice reference
// implementation used by tests and by gpu.Config.ForceSoftwareDevice.
package gpu

import (
	"context"
	"errors"
	"runtime"

	"github.com/gogpu/gputypes"
)

// Backend selects the rendering API a real gpu.Device would bind to.
type Backend int

const (
	Auto Backend = iota
	D3D12
	Vulkan
	Metal
)

func (b Backend) String() string {
	switch b {
	case D3D12:
		return "d3d12"
	case Vulkan:
		return "vulkan"
	case Metal:
		return "metal"
	default:
		return "auto"
	}
}

// SupportedBackends returns the backends available on the host OS, most
// preferred first.
func SupportedBackends() []Backend {
	switch runtime.GOOS {
	case "windows":
		return []Backend{D3D12, Vulkan}
	case "darwin":
		return []Backend{Metal}
	default:
		return []Backend{Vulkan}
	}
}

// Config selects how the orchestrator acquires a gpu.Device.
type Config struct {
	API                 Backend
	ForceSoftwareDevice bool
}

// BufferDescriptor describes a buffer to allocate. Usage is the real flag
// type github.com/gogpu/gputypes defines for its own GPU buffers, so a genuine gogpu/wgpu-backed Device can satisfy this
// interface without this module declaring its own bit-flag vocabulary.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage gputypes.BufferUsage
}

// Buffer is an opaque handle to a device allocation.
type Buffer struct {
	id   uint64
	size uint64
}

// ErrDeviceUnavailable is returned by NewFactory when no backend in
// SupportedBackends() can be bound and ForceSoftwareDevice was not set.
var ErrDeviceUnavailable = errors.New("gpu: no backend available on this host")

// Device is the RHI collaborator contract the orchestrator drives.
type Device interface {
	CreateBuffer(desc BufferDescriptor) (Buffer, error)
	ReleaseBuffer(buf Buffer) error
	ReadBuffer(ctx context.Context, dst []byte, buf Buffer, offset, size int) error
	BeginRecording() error
	EndRecording() error
	GarbageCollect()
}

// NewFactory returns a Device for cfg. Only the in-process SoftwareDevice
// is implemented in this module; a real hardware-backed Device is
// expected to be supplied by the host application through the same
// interface.
func NewFactory(cfg Config) (Device, error) {
	if cfg.ForceSoftwareDevice {
		return NewSoftwareDevice(), nil
	}
	if len(SupportedBackends()) == 0 {
		return nil, ErrDeviceUnavailable
	}
	return NewSoftwareDevice(), nil
}
