package lifecycle

import "PriceTrust/internal/domain/models"

// DefaultDescriptor applies to tools with no configured lifecycle:
// static with a one-day TTL and mild jitter.
var DefaultDescriptor = models.ToolLifecycleDescriptor{
	Lifecycle: models.LifecycleStatic,
	JitterPct: 10,
}

// Registry maps tool names to their lifecycle descriptors. It is built
// once from loaded configuration and injected where needed; there is no
// process-wide instance, so tests construct isolated registries.
type Registry struct {
	descriptors map[string]models.ToolLifecycleDescriptor
}

// NewRegistry copies the descriptor map into an immutable registry.
func NewRegistry(descriptors map[string]models.ToolLifecycleDescriptor) *Registry {
	m := make(map[string]models.ToolLifecycleDescriptor, len(descriptors))
	for name, d := range descriptors {
		m[name] = d
	}
	return &Registry{descriptors: m}
}

// Descriptor returns the descriptor for tool, or DefaultDescriptor when
// the tool is unknown.
func (r *Registry) Descriptor(tool string) models.ToolLifecycleDescriptor {
	if d, ok := r.descriptors[tool]; ok {
		return d
	}
	return DefaultDescriptor
}

// Known reports whether tool has an explicit descriptor.
func (r *Registry) Known(tool string) bool {
	_, ok := r.descriptors[tool]
	return ok
}
