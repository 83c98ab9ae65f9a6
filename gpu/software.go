package gpu

import (
	"context"
	"errors"
	"sync"

	"github.com/gogpu/gputypes"
)

// ErrBufferNotMappable is returned by ReadBuffer when buf was not created
// with gputypes.BufferUsageMapRead.
var ErrBufferNotMappable = errors.New("gpu: buffer is not readable (missing BufferUsageMapRead)")

// ErrUnknownBuffer is returned for operations on a Buffer this device did
// not create (or already released).
var ErrUnknownBuffer = errors.New("gpu: unknown buffer handle")

// SoftwareDevice is an in-process Device backed by plain heap allocations.
// It is used by tests, and it is the Device NewFactory returns for every
// configuration it accepts; no hardware-backed Device exists in this module.
type SoftwareDevice struct {
	mu        sync.Mutex
	nextID    uint64
	allocs    map[uint64][]byte
	usages    map[uint64]gputypes.BufferUsage
	recording bool
}

// NewSoftwareDevice returns a ready-to-use SoftwareDevice.
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{
		allocs: make(map[uint64][]byte),
		usages: make(map[uint64]gputypes.BufferUsage),
	}
}

func (d *SoftwareDevice) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.allocs[id] = make([]byte, desc.Size)
	d.usages[id] = desc.Usage
	return Buffer{id: id, size: desc.Size}, nil
}

func (d *SoftwareDevice) ReleaseBuffer(buf Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.allocs[buf.id]; !ok {
		return ErrUnknownBuffer
	}
	delete(d.allocs, buf.id)
	delete(d.usages, buf.id)
	return nil
}

// ReadBuffer performs a blocking "readback": a synchronous copy from the
// buffer's backing storage into dst. A real Device would wait on the
// underlying GPU fence here; the software device has no fence to wait on.
func (d *SoftwareDevice) ReadBuffer(ctx context.Context, dst []byte, buf Buffer, offset, size int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	backing, ok := d.allocs[buf.id]
	if !ok {
		return ErrUnknownBuffer
	}
	if d.usages[buf.id]&gputypes.BufferUsageMapRead == 0 {
		return ErrBufferNotMappable
	}
	if offset < 0 || size < 0 || offset+size > len(backing) {
		return errors.New("gpu: read out of range")
	}
	copy(dst, backing[offset:offset+size])
	return nil
}

// WriteBuffer is a software-device-only helper (not part of the Device
// interface) that test code and the reference compressor use to seed
// buffer contents before a ReadBuffer call.
func (d *SoftwareDevice) WriteBuffer(buf Buffer, offset int, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	backing, ok := d.allocs[buf.id]
	if !ok {
		return ErrUnknownBuffer
	}
	if offset < 0 || offset+len(data) > len(backing) {
		return errors.New("gpu: write out of range")
	}
	copy(backing[offset:], data)
	return nil
}

func (d *SoftwareDevice) BeginRecording() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recording = true
	return nil
}

func (d *SoftwareDevice) EndRecording() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recording = false
	return nil
}

// GarbageCollect is a no-op for the software device: there are no
// transient GPU-side allocations to reclaim.
func (d *SoftwareDevice) GarbageCollect() {}
