package orchestrator

import (
	"context"
	"sync"

	"github.com/zibravdb/zibravdb-go/cache"
	"github.com/zibravdb/zibravdb-go/compressor"
	"github.com/zibravdb/zibravdb-go/gpu"
)

// fileItem is one fingerprint's worth of process-wide state: the
// Orchestrator handle bound to that file's compressor, and the bounded
// FIFO of already-materialized decompressed frames for it.
type fileItem struct {
	orch  *Orchestrator
	cache *cache.FrameCache
}

// Manager is the process-wide decompression helper: a mutex-guarded
// fingerprint -> fileItem map, one entry per compressed file currently
// open in this process. A fingerprint is caller-chosen (typically the
// file's path or a content digest); Manager does not interpret it.
//
// Manager itself is safe for concurrent use, and so is the FrameCache it
// hands out (it locks its own mutex). The Orchestrator it hands out for a
// given fingerprint is not — callers serialize their own operations on one
// file's handle, exactly as Orchestrator's own doc comment requires.
type Manager struct {
	mu    sync.Mutex
	items map[string]*fileItem
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{items: make(map[string]*fileItem)}
}

// Default is the package-level convenience instance, offered alongside the
// constructor for callers that don't need multiple independent managers.
var Default = NewManager()

// Open returns the Orchestrator and FrameCache for fingerprint, creating
// and initializing both on first use. cfg is only consulted on creation;
// an already-open fingerprint ignores it and returns the existing handle.
func (m *Manager) Open(cfg gpu.Config, fingerprint string) (*Orchestrator, *cache.FrameCache, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item, ok := m.items[fingerprint]; ok {
		return item.orch, item.cache, nil
	}

	orch := New()
	if err := orch.Initialize(cfg); err != nil {
		return nil, nil, err
	}
	item := &fileItem{orch: orch, cache: &cache.FrameCache{}}
	m.items[fingerprint] = item
	return item.orch, item.cache, nil
}

// Bind registers comp as fingerprint's decompressor. fingerprint must
// already be open (see Open).
func (m *Manager) Bind(ctx context.Context, fingerprint string, comp compressor.Compressor) error {
	m.mu.Lock()
	item, ok := m.items[fingerprint]
	m.mu.Unlock()
	if !ok {
		return ErrInternal
	}
	return item.orch.RegisterDecompressor(ctx, comp)
}

// Release tears down fingerprint's Orchestrator and drops it from the
// map. A fingerprint that was never opened is a no-op.
func (m *Manager) Release(fingerprint string) error {
	m.mu.Lock()
	item, ok := m.items[fingerprint]
	delete(m.items, fingerprint)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return item.orch.Release()
}

// Len returns the number of currently open fingerprints. Exposed for
// tests; not part of the operational contract.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
