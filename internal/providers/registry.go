package providers

import (
	"fmt"
	"sync"

	"github.com/Kiefer-Networks/licence-manager/internal/models"
	"github.com/rs/zerolog"
)

// Factory builds a Provider for one vendor from its stored configuration.
type Factory func(vendor *models.Vendor, logger zerolog.Logger) (Provider, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[models.VendorType]Factory)
)

// Register makes a provider factory available for a vendor type. Adapters
// register themselves from init; the engine never branches on vendor
// identity beyond this lookup.
func Register(vendorType models.VendorType, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[vendorType] = factory
}

// New builds a Provider for the given vendor.
func New(vendor *models.Vendor, logger zerolog.Logger) (Provider, error) {
	factoriesMu.RLock()
	factory, ok := factories[vendor.Type]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no provider registered for vendor type %q", vendor.Type)
	}
	return factory(vendor, logger)
}
