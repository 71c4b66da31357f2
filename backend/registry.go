package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Candidate name constants.
const (
	// NameVulkan is the Vulkan context (gpu package).
	NameVulkan = "vulkan"
	// NameMetal is the Metal context (gpu package).
	NameMetal = "metal"
	// NameDX12 is the Direct3D 12 context (gpu package).
	NameDX12 = "dx12"
	// NameGLES is the legacy OpenGL ES context (gpu package).
	NameGLES = "gles"
	// NameSoftware is the CPU reference device.
	NameSoftware = "software"
)

// Factory creates a new, unopened device.
type Factory func() Device

// registry holds registered candidates.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for candidate selection (first to open wins).
	// Modern contexts first, then the legacy GL context, then the CPU.
	candidatePriority = []string{NameVulkan, NameMetal, NameDX12, NameGLES, NameSoftware}
	// Candidates that are only opened when named explicitly. The CPU
	// device is not a graphics context and must not stand in for one.
	explicitOnly = map[string]bool{NameSoftware: true}
)

// Register registers a device factory with the given name.
// This is typically called from init() functions.
// If a candidate with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a candidate from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered candidate names in priority order.
// Candidates outside the priority list follow in name order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return orderedLocked()
}

func orderedLocked() []string {
	names := make([]string, 0, len(factories))
	seen := make(map[string]bool, len(factories))
	for _, name := range candidatePriority {
		if _, ok := factories[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range factories {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Defaults returns the candidates Open tries when given no names: every
// registered candidate in priority order except the explicit-only ones
// (NameSoftware).
func Defaults() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	all := orderedLocked()
	names := all[:0]
	for _, name := range all {
		if !explicitOnly[name] {
			names = append(names, name)
		}
	}
	return names
}

// IsRegistered checks if a candidate with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Get returns a new, unopened device by name.
// Returns nil if the candidate is not registered.
func Get(name string) Device {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil
	}
	d := factory()
	if d != nil {
		propagateLogger(d, slogger())
	}
	return d
}

// Open tries the named candidates in order, or the Defaults when names is
// empty, and returns the first device that opens. Unknown names count as
// candidates that failed. The software device is never tried unless named.
//
// When nothing opens, the error wraps ErrNoGraphicsCapability together with
// each candidate's failure.
func Open(names ...string) (Device, error) {
	if len(names) == 0 {
		names = Defaults()
	}
	var errs []error
	for _, name := range names {
		d := Get(name)
		if d == nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, ErrNotRegistered))
			continue
		}
		if err := d.Open(); err != nil {
			slogger().Warn("backend: candidate unavailable", "name", name, "err", err)
			d.Close()
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		slogger().Info("backend: candidate opened", "name", name)
		return d, nil
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no candidates registered", ErrNoGraphicsCapability)
	}
	return nil, fmt.Errorf("%w: %w", ErrNoGraphicsCapability, errors.Join(errs...))
}

// ErrNotRegistered is reported for a requested candidate name that has no
// factory.
var ErrNotRegistered = errors.New("backend: not registered")

// loggerSetter is implemented by devices that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

func propagateLogger(d Device, l *slog.Logger) {
	if ls, ok := d.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
