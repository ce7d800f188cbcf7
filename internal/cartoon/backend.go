package cartoon

import (
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"
)

// DefaultBackend is used when no backend is named.
const DefaultBackend = "native"

// Backend runs the six pipeline stages on a validated image.
//
// Run receives a copy of the caller's image with its origin at (0,0) and
// parameters that already passed Validate. Implementations must not retain
// src after returning.
type Backend interface {
	Name() string
	Run(src *image.NRGBA, p Params) (*Result, error)
}

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Backend)
)

func init() {
	Register(nativeBackend{})
}

// Register makes b available under b.Name(), replacing any earlier backend
// with the same name.
func Register(b Backend) {
	backendsMu.Lock()
	backends[b.Name()] = b
	backendsMu.Unlock()
}

// Lookup returns the backend registered under name. An empty name selects
// DefaultBackend.
func Lookup(name string) (Backend, error) {
	if name == "" {
		name = DefaultBackend
	}

	backendsMu.RLock()
	b, ok := backends[name]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown backend %q (available: %s)",
			ErrInvalidParameter, name, strings.Join(Backends(), ", "))
	}
	return b, nil
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	backendsMu.RLock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	backendsMu.RUnlock()

	sort.Strings(names)
	return names
}
