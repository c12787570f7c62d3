// Package flags provides feature flags read from configuration.
// Flags are read-only after initialization and unknown flags are disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/xwidget/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagSweepOnReload makes the watch command sweep records of nodes that
	// disappeared from a reloaded tree file.
	FlagSweepOnReload = "sweep-on-reload"

	// FlagResolverDedupe collapses concurrent loads of the same widget path
	// into one resolver call.
	FlagResolverDedupe = "resolver-dedupe"

	// FlagStatusColor renders the status tree with state colours.
	FlagStatusColor = "status-color"
)

// Defaults returns the value each known flag has when configuration is silent.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagSweepOnReload:  true,
		FlagResolverDedupe: true,
		FlagStatusColor:    true,
	}
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map layered over Defaults.
func New(flags map[string]bool) *Registry {
	merged := Defaults()
	maps.Copy(merged, flags)
	r := &Registry{flags: merged}
	log.Debug(log.CatConfig, "feature flags initialized", "count", len(merged), "enabled", r.EnabledNames())
	return r
}

// Enabled returns true if the named flag is enabled.
// Unknown flags and a nil registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "unknown flag accessed", "flag", name)
		return false
	}
	return value
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}

// EnabledNames returns the enabled flags in sorted order.
func (r *Registry) EnabledNames() []string {
	if r == nil {
		return nil
	}
	var names []string
	for name, on := range r.flags {
		if on {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
