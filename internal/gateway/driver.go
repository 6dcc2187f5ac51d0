package gateway

import (
	"errors"
	"sync"
)

// Factory builds the per-account client set from resolved credentials.
// Concrete cloud SDK bindings register themselves at init time, the same way
// database/sql drivers do; the engine only ever sees the Clients interfaces.
type Factory interface {
	Clients(creds Credentials) (Clients, error)
}

var (
	driverMu sync.RWMutex
	driver   Factory
)

// RegisterDriver installs the gateway driver. Calling it twice panics.
func RegisterDriver(f Factory) {
	driverMu.Lock()
	defer driverMu.Unlock()

	if driver != nil {
		panic("gateway: driver already registered")
	}

	driver = f
}

// Driver returns the registered factory, or a factory that fails every call
// when no driver has been registered.
func Driver() Factory {
	driverMu.RLock()
	defer driverMu.RUnlock()

	if driver == nil {
		return unregisteredFactory{}
	}

	return driver
}

type unregisteredFactory struct{}

func (unregisteredFactory) Clients(Credentials) (Clients, error) {
	return nil, errors.New("gateway: no resource gateway driver registered")
}
