package schema

import (
	"fmt"
	"sort"
)

// Registry holds every entity schema known to the engine. It is fully
// constructed by NewRegistry and immutable afterwards; read operations take no
// locks because there is nothing to synchronize against.
type Registry struct {
	entities map[string]*EntitySchema
}

// NewRegistry builds a registry from the given entity schemas. It rejects
// duplicate entity names, relationship targets that do not resolve to a
// registered entity, and relationship names that collide with field names.
func NewRegistry(entities []*EntitySchema) (*Registry, error) {
	byName := make(map[string]*EntitySchema, len(entities))
	for _, entity := range entities {
		if entity.Name == "" {
			return nil, fmt.Errorf("entity with empty name")
		}
		if _, exists := byName[entity.Name]; exists {
			return nil, fmt.Errorf("entity %s is already registered", entity.Name)
		}
		byName[entity.Name] = entity
	}

	for _, entity := range byName {
		for name, rel := range entity.Relationships {
			if entity.HasField(name) {
				return nil, fmt.Errorf("entity %s: relationship %s collides with a field of the same name", entity.Name, name)
			}
			if _, exists := byName[rel.Target]; !exists {
				return nil, fmt.Errorf("entity %s: relationship %s targets unknown entity %s", entity.Name, name, rel.Target)
			}
		}
	}

	return &Registry{entities: byName}, nil
}

// LookupEntity retrieves an entity schema by name.
func (r *Registry) LookupEntity(name string) (*EntitySchema, bool) {
	entity, exists := r.entities[name]
	return entity, exists
}

// LookupField resolves a field on the named entity.
func (r *Registry) LookupField(entity, field string) (FieldType, bool) {
	e, exists := r.entities[entity]
	if !exists {
		return 0, false
	}
	t, exists := e.Fields[field]
	return t, exists
}

// LookupRelationship resolves a relationship on the named entity.
func (r *Registry) LookupRelationship(entity, name string) (*Relationship, bool) {
	e, exists := r.entities[entity]
	if !exists {
		return nil, false
	}
	rel, exists := e.Relationships[name]
	return rel, exists
}

// Entities returns the names of all registered entities, sorted.
func (r *Registry) Entities() []string {
	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListFields returns the sorted field names of the named entity.
func (r *Registry) ListFields(entity string) ([]string, bool) {
	e, exists := r.entities[entity]
	if !exists {
		return nil, false
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, true
}

// ListRelationships returns the sorted relationship names of the named entity.
func (r *Registry) ListRelationships(entity string) ([]string, bool) {
	e, exists := r.entities[entity]
	if !exists {
		return nil, false
	}
	names := make([]string, 0, len(e.Relationships))
	for name := range e.Relationships {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, true
}

// Count returns the number of registered entities.
func (r *Registry) Count() int {
	return len(r.entities)
}

// RegistryStats summarizes the registry contents.
type RegistryStats struct {
	Entities      int `json:"entities"`
	Fields        int `json:"fields"`
	Relationships int `json:"relationships"`
}

// Stats returns statistics about the registry.
func (r *Registry) Stats() RegistryStats {
	stats := RegistryStats{Entities: len(r.entities)}
	for _, entity := range r.entities {
		stats.Fields += len(entity.Fields)
		stats.Relationships += len(entity.Relationships)
	}
	return stats
}
