// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surfman

import (
	"errors"
	"sort"
	"sync"
)

// Connection is a live link to a native windowing system. The concrete
// type behind it (e.g. *glx.Connection) carries the platform-specific
// device API; this interface is the narrow slice the registry needs.
//
// The native display handle must remain valid for the lifetime of any
// device built on the connection.
type Connection interface {
	// Backend returns the name of the backend that opened the connection.
	Backend() string

	// NativeDisplay returns the native display handle.
	NativeDisplay() uintptr

	// Close releases the connection. Close is idempotent.
	Close() error
}

// OpenFunc opens a new connection to the windowing system.
type OpenFunc func() (Connection, error)

// RegistryEntry represents a registered windowing backend.
type RegistryEntry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines selection order (higher = preferred).
	// Standard priorities:
	//   - 100: native backends (GLX, EGL)
	//   - 10: fallback backends (headless, test doubles)
	Priority int

	// Open opens a connection through this backend.
	Open OpenFunc

	// Available reports if the backend is usable on this system.
	Available func() bool
}

// globalRegistry is the default registry.
var globalRegistry = &Registry{}

// Registry manages registered windowing backends.
//
// The registry lets backends register themselves without the root package
// importing them; users activate a backend with a blank import:
//
//	import _ "github.com/gogpu/surfman/glx"
//
// Example usage:
//
//	conn, err := surfman.Open()          // best available backend
//	conn, err := surfman.OpenBackend("glx") // a specific one
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry.
// Most code should use the global registry via Register and Open.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Register adds a backend to the global registry.
//
// Parameters:
//   - name: unique identifier (e.g., "glx", "egl")
//   - priority: selection priority (higher = preferred)
//   - open: function to open connections
//   - available: function to check if the backend is usable
//
// If available is nil, the backend is assumed always available.
// Registering a name that already exists replaces the previous entry.
func Register(name string, priority int, open OpenFunc, available func() bool) {
	globalRegistry.Register(name, priority, open, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered backend names sorted by priority (highest first).
func List() []string {
	return globalRegistry.List()
}

// Available returns names of all usable backends sorted by priority.
func Available() []string {
	return globalRegistry.Available()
}

// Get returns information about a specific backend.
func Get(name string) (*RegistryEntry, bool) {
	return globalRegistry.Get(name)
}

// Open opens a connection using the best available backend.
// Returns an error if no backends are available.
func Open() (Connection, error) {
	return globalRegistry.Open()
}

// OpenBackend opens a connection using a specific named backend.
func OpenBackend(name string) (Connection, error) {
	return globalRegistry.OpenBackend(name)
}

// Register adds a backend to this registry.
func (r *Registry) Register(name string, priority int, open OpenFunc, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}

	if available == nil {
		available = func() bool { return true }
	}

	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Open:      open,
		Available: available,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered backend names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// Available returns names of all usable backends sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(true)
}

// Get returns information about a specific backend.
func (r *Registry) Get(name string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}

	// Return a copy to prevent modification
	entryCopy := *entry
	return &entryCopy, true
}

// Open opens a connection using the best available backend.
func (r *Registry) Open() (Connection, error) {
	r.mu.RLock()
	available := r.sortedNames(true)
	r.mu.RUnlock()

	if len(available) == 0 {
		return nil, ErrNoBackendAvailable
	}

	// Try each available backend in priority order
	var lastErr error
	for _, name := range available {
		conn, err := r.OpenBackend(name)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoBackendAvailable
}

// OpenBackend opens a connection using a specific backend.
func (r *Registry) OpenBackend(name string) (Connection, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &BackendNotFoundError{Name: name}
	}

	if !entry.Available() {
		return nil, &BackendUnavailableError{Name: name}
	}

	return entry.Open()
}

// sortedNames returns backend names sorted by priority (highest first).
// If onlyAvailable is true, filters to usable backends only.
// Must be called with lock held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	if len(r.entries) == 0 {
		return nil
	}

	type entry struct {
		name     string
		priority int
	}

	entries := make([]entry, 0, len(r.entries))
	for name, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, entry{name: name, priority: e.Priority})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].priority > entries[j].priority
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Errors.
var (
	// ErrNoBackendAvailable is returned when no windowing backends are
	// registered or available on the current system.
	ErrNoBackendAvailable = errors.New("surfman: no backend available")
)

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "surfman: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend exists but is not usable.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "surfman: backend unavailable: " + e.Name
}
