package reconcile

import (
	"sync"

	"github.com/google/uuid"
)

// vendorLocks serializes reconciliation per vendor within this process.
// A database advisory lock covers the multi-process case; this avoids
// even opening a transaction when a local run is already in flight.
type vendorLocks struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func newVendorLocks() *vendorLocks {
	return &vendorLocks{held: make(map[uuid.UUID]struct{})}
}

// tryAcquire takes the vendor's lock if free. Returns false when another
// run holds it; callers must not block waiting.
func (v *vendorLocks) tryAcquire(vendorID uuid.UUID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, held := v.held[vendorID]; held {
		return false
	}
	v.held[vendorID] = struct{}{}
	return true
}

func (v *vendorLocks) release(vendorID uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.held, vendorID)
}
