// Package explorer provides read-only schema discovery over the registry so
// callers can find valid entities and fields before building a query.
package explorer

import (
	"sort"
	"strings"

	"github.com/gridiron-data/gridiron/internal/schema"
)

// Explorer answers search, describe, and stats requests against a registry.
type Explorer struct {
	registry *schema.Registry
}

// New creates an explorer over the given registry.
func New(registry *schema.Registry) *Explorer {
	return &Explorer{registry: registry}
}

// Match is a single search hit. Field is empty when the entity name itself
// matched.
type Match struct {
	Entity string `json:"entity"`
	Field  string `json:"field,omitempty"`
}

// matchRank orders hits by how directly they matched: exact name, name
// prefix, camelCase word, then bare substring.
const (
	rankExact = iota
	rankPrefix
	rankWord
	rankContains
	rankMiss
)

// Search returns entities and fields matching the term, best matches first.
// Matching is case-insensitive and camelCase-aware, so "team" finds both
// "Team" and "homeTeamId".
func (e *Explorer) Search(term string) []Match {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	type ranked struct {
		match Match
		rank  int
	}
	var hits []ranked

	for _, name := range e.registry.Entities() {
		if rank := rankMatch(name, term); rank != rankMiss {
			hits = append(hits, ranked{match: Match{Entity: name}, rank: rank})
		}
		fields, _ := e.registry.ListFields(name)
		for _, field := range fields {
			if rank := rankMatch(field, term); rank != rankMiss {
				hits = append(hits, ranked{match: Match{Entity: name, Field: field}, rank: rank})
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		if hits[i].match.Entity != hits[j].match.Entity {
			return hits[i].match.Entity < hits[j].match.Entity
		}
		return hits[i].match.Field < hits[j].match.Field
	})

	matches := make([]Match, 0, len(hits))
	for _, hit := range hits {
		matches = append(matches, hit.match)
	}
	return matches
}

func rankMatch(name, term string) int {
	lower := strings.ToLower(name)
	switch {
	case lower == term:
		return rankExact
	case strings.HasPrefix(lower, term):
		return rankPrefix
	}
	for _, word := range splitCamel(name) {
		if strings.ToLower(word) == term {
			return rankWord
		}
	}
	if strings.Contains(lower, term) {
		return rankContains
	}
	return rankMiss
}

// splitCamel splits an identifier on camelCase boundaries.
func splitCamel(name string) []string {
	var words []string
	start := 0
	runes := []rune(name)
	for i := 1; i < len(runes); i++ {
		if runes[i] >= 'A' && runes[i] <= 'Z' && runes[i-1] >= 'a' && runes[i-1] <= 'z' {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = append(words, string(runes[start:]))
	return words
}

// FieldInfo describes one field of an entity.
type FieldInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// RelationshipInfo describes one relationship of an entity.
type RelationshipInfo struct {
	Name        string `json:"name"`
	Target      string `json:"target"`
	Cardinality string `json:"cardinality"`
}

// EntityDescription is the full field and relationship dump for an entity.
type EntityDescription struct {
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	Fields        []FieldInfo        `json:"fields"`
	Relationships []RelationshipInfo `json:"relationships,omitempty"`
}

// DescribeEntity returns the full description of the named entity.
func (e *Explorer) DescribeEntity(name string) (*EntityDescription, bool) {
	entity, exists := e.registry.LookupEntity(name)
	if !exists {
		return nil, false
	}

	desc := &EntityDescription{
		Name:        entity.Name,
		Description: entity.Description,
	}

	fieldNames, _ := e.registry.ListFields(name)
	for _, field := range fieldNames {
		desc.Fields = append(desc.Fields, FieldInfo{
			Name: field,
			Type: entity.Fields[field].String(),
		})
	}

	relNames, _ := e.registry.ListRelationships(name)
	for _, relName := range relNames {
		rel := entity.Relationships[relName]
		desc.Relationships = append(desc.Relationships, RelationshipInfo{
			Name:        rel.Name,
			Target:      rel.Target,
			Cardinality: rel.Cardinality.String(),
		})
	}

	return desc, true
}

// Stats returns entity, field, and relationship counts for the registry.
func (e *Explorer) Stats() schema.RegistryStats {
	return e.registry.Stats()
}
