// Package registry provides the registry of field extractors.
package registry

import (
	"sync"

	"spoc-progress/pkg/interfaces"
	"spoc-progress/pkg/types"
)

// FieldRegistry manages field extractors.
type FieldRegistry struct {
	mu         sync.RWMutex
	extractors []interfaces.FieldExtractor
	byField    map[string]interfaces.FieldExtractor
}

// NewFieldRegistry creates a new field registry.
func NewFieldRegistry() *FieldRegistry {
	return &FieldRegistry{
		extractors: make([]interfaces.FieldExtractor, 0),
		byField:    make(map[string]interfaces.FieldExtractor),
	}
}

// Register adds an extractor to the registry. A later extractor replaces an
// earlier one for any field they both produce.
func (r *FieldRegistry) Register(extractor interfaces.FieldExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, extractor)
	for _, field := range extractor.Fields() {
		r.byField[field] = extractor
	}
}

// GetByField returns the extractor responsible for a field, or nil.
func (r *FieldRegistry) GetByField(field string) interfaces.FieldExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byField[field]
}

// All returns all registered extractors.
func (r *FieldRegistry) All() []interfaces.FieldExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]interfaces.FieldExtractor, len(r.extractors))
	copy(result, r.extractors)
	return result
}

// Extract runs every extractor independently over text and merges the results.
// Each field is taken only from the extractor that owns it.
func (r *FieldRegistry) Extract(text string) types.Extracted {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out types.Extracted
	for _, e := range r.extractors {
		for field, value := range e.Extract(text) {
			if r.byField[field] == e {
				out.Set(field, value)
			}
		}
	}
	return out
}
