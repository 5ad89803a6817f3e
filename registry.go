package rendernode

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]CanvasFactory)
)

// Register makes a canvas factory available under name.
// Backend packages call it from init(), following the database/sql
// driver pattern:
//
//	import _ "github.com/gogpu/rendernode/backends/raster"
//
//	f, err := rendernode.NewCanvasFactory("raster")
//
// Register panics if factory is nil or name is already registered.
func Register(name string, factory CanvasFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("rendernode: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("rendernode: Register called twice for " + name)
	}
	factories[name] = factory
	Logger().Info("rendernode: canvas registered", "name", name)
}

// Unregister removes a factory. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// NewCanvasFactory returns the factory registered under name.
func NewCanvasFactory(name string) (CanvasFactory, error) {
	registryMu.RLock()
	f, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("rendernode: canvas %q (forgotten import?): %w", name, ErrUnknownCanvas)
	}
	return f, nil
}

// Factories returns the registered names in sorted order.
func Factories() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}
