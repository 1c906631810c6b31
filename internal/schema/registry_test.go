package schema

import "testing"

func testEntities() []*EntitySchema {
	return []*EntitySchema{
		{
			Name:       "Team",
			QueryField: "currentTeams",
			Fields: map[string]FieldType{
				"teamId":     TypeInt,
				"school":     TypeString,
				"conference": TypeString,
			},
			Relationships: map[string]*Relationship{
				"homeGames": {Source: "Team", Name: "homeGames", Target: "Game", Cardinality: CardinalityMany},
			},
		},
		{
			Name:       "Game",
			QueryField: "game",
			Fields: map[string]FieldType{
				"gameId":    TypeInt,
				"season":    TypeInt,
				"startDate": TypeDatetime,
			},
			Relationships: map[string]*Relationship{
				"homeTeam": {Source: "Game", Name: "homeTeam", Target: "Team", Cardinality: CardinalityOne},
				"awayTeam": {Source: "Game", Name: "awayTeam", Target: "Team", Cardinality: CardinalityOne},
			},
		},
	}
}

func TestNewRegistry(t *testing.T) {
	t.Run("valid entities", func(t *testing.T) {
		registry, err := NewRegistry(testEntities())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if registry.Count() != 2 {
			t.Errorf("expected 2 entities, got %d", registry.Count())
		}
	})

	t.Run("duplicate entity", func(t *testing.T) {
		entities := testEntities()
		entities = append(entities, entities[0])
		if _, err := NewRegistry(entities); err == nil {
			t.Error("expected error for duplicate entity")
		}
	})

	t.Run("dangling relationship target", func(t *testing.T) {
		entities := testEntities()
		entities[0].Relationships["rankings"] = &Relationship{
			Source: "Team", Name: "rankings", Target: "Ranking", Cardinality: CardinalityMany,
		}
		if _, err := NewRegistry(entities); err == nil {
			t.Error("expected error for unknown relationship target")
		}
	})

	t.Run("relationship name collides with field", func(t *testing.T) {
		entities := testEntities()
		entities[0].Relationships["school"] = &Relationship{
			Source: "Team", Name: "school", Target: "Game", Cardinality: CardinalityOne,
		}
		if _, err := NewRegistry(entities); err == nil {
			t.Error("expected error for field/relationship name collision")
		}
	})

	t.Run("cycles are representable", func(t *testing.T) {
		// Team -> Game -> Team is a legal cyclic graph.
		if _, err := NewRegistry(testEntities()); err != nil {
			t.Errorf("cyclic relationship graph should be valid: %v", err)
		}
	})
}

func TestRegistryLookups(t *testing.T) {
	registry, err := NewRegistry(testEntities())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("lookup entity", func(t *testing.T) {
		entity, exists := registry.LookupEntity("Team")
		if !exists {
			t.Fatal("Team should exist")
		}
		if entity.QueryField != "currentTeams" {
			t.Errorf("expected query field currentTeams, got %s", entity.QueryField)
		}

		if _, exists := registry.LookupEntity("Stadium"); exists {
			t.Error("Stadium should not exist")
		}
	})

	t.Run("lookup field", func(t *testing.T) {
		fieldType, exists := registry.LookupField("Game", "startDate")
		if !exists {
			t.Fatal("Game.startDate should exist")
		}
		if fieldType != TypeDatetime {
			t.Errorf("expected datetime, got %s", fieldType)
		}

		if _, exists := registry.LookupField("Game", "score"); exists {
			t.Error("Game.score should not exist")
		}
		if _, exists := registry.LookupField("Stadium", "name"); exists {
			t.Error("lookup on unknown entity should miss")
		}
	})

	t.Run("lookup relationship", func(t *testing.T) {
		rel, exists := registry.LookupRelationship("Game", "homeTeam")
		if !exists {
			t.Fatal("Game.homeTeam should exist")
		}
		if rel.Target != "Team" || rel.Cardinality != CardinalityOne {
			t.Errorf("unexpected relationship: %+v", rel)
		}

		if _, exists := registry.LookupRelationship("Game", "referee"); exists {
			t.Error("Game.referee should not exist")
		}
	})

	t.Run("sorted listings", func(t *testing.T) {
		names := registry.Entities()
		if len(names) != 2 || names[0] != "Game" || names[1] != "Team" {
			t.Errorf("expected sorted [Game Team], got %v", names)
		}

		fields, exists := registry.ListFields("Game")
		if !exists {
			t.Fatal("Game should exist")
		}
		expected := []string{"gameId", "season", "startDate"}
		for i, field := range expected {
			if fields[i] != field {
				t.Errorf("expected field %s at index %d, got %s", field, i, fields[i])
			}
		}

		rels, _ := registry.ListRelationships("Game")
		if len(rels) != 2 || rels[0] != "awayTeam" || rels[1] != "homeTeam" {
			t.Errorf("expected sorted [awayTeam homeTeam], got %v", rels)
		}
	})

	t.Run("stats", func(t *testing.T) {
		stats := registry.Stats()
		if stats.Entities != 2 {
			t.Errorf("expected 2 entities, got %d", stats.Entities)
		}
		if stats.Fields != 6 {
			t.Errorf("expected 6 fields, got %d", stats.Fields)
		}
		if stats.Relationships != 3 {
			t.Errorf("expected 3 relationships, got %d", stats.Relationships)
		}
	})
}

func TestFieldTypeRoundTrip(t *testing.T) {
	for _, name := range []string{"int", "float", "string", "bool", "datetime"} {
		fieldType, err := ParseFieldType(name)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", name, err)
		}
		if fieldType.String() != name {
			t.Errorf("round trip failed: %s -> %s", name, fieldType)
		}
	}

	if _, err := ParseFieldType("decimal"); err == nil {
		t.Error("expected error for unknown type")
	}
}
