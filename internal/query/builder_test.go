package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridiron-data/gridiron/internal/schema"
)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	registry, err := schema.LoadDefault()
	require.NoError(t, err)
	return registry
}

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	return NewBuilder(testRegistry(t), DefaultOptions())
}

func TestBuildTeamByConference(t *testing.T) {
	builder := newTestBuilder(t)

	plan, err := builder.Build(&Request{
		Entity:  "Team",
		Fields:  []string{"teamId", "school", "conference"},
		Filters: []Filter{{Field: "conference", Op: OpEqual, Value: "SEC"}},
		Limit:   20,
	})
	require.NoError(t, err)

	assert.Equal(t, "Team", plan.Entity)
	assert.Equal(t, "currentTeams", plan.QueryField)
	assert.Equal(t, []string{"teamId", "school", "conference"}, plan.Fields)
	require.Len(t, plan.Filters, 1)
	assert.Equal(t, schema.TypeString, plan.Filters[0].Type)
	assert.Equal(t, 20, plan.Limit)
	assert.Empty(t, plan.Expand)
	assert.NotEmpty(t, plan.ID)
	assert.InDelta(t, 3, plan.Complexity, 0.001)
}

func TestBuildGameWithTeamExpansions(t *testing.T) {
	builder := newTestBuilder(t)

	plan, err := builder.Build(&Request{
		Entity: "Game",
		Fields: []string{"gameId"},
		Expand: map[string]*Expansion{
			"homeTeam": {Fields: []string{"school"}},
			"awayTeam": {Fields: []string{"school"}},
		},
	})
	require.NoError(t, err)

	require.Len(t, plan.Expand, 2)
	assert.Equal(t, "Team", plan.Expand["homeTeam"].Entity)
	assert.Equal(t, "one", plan.Expand["homeTeam"].Cardinality)
	// 1 root field + one field per to-one expansion at depth 1: 1 + 2 + 2.
	assert.InDelta(t, 5, plan.Complexity, 0.001)
}

func TestBuildUnknownEntity(t *testing.T) {
	builder := newTestBuilder(t)

	_, err := builder.Build(&Request{Entity: "Stadium", Fields: []string{"name"}})
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, KindEntityNotFound, rejection.Kind)
}

func TestBuildUnknownField(t *testing.T) {
	builder := newTestBuilder(t)

	_, err := builder.Build(&Request{Entity: "Team", Fields: []string{"teamId", "stadium"}})
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, KindUnknownField, rejection.Kind)
	assert.Equal(t, "stadium", rejection.Path)
}

func TestBuildUnknownRelationship(t *testing.T) {
	builder := newTestBuilder(t)

	_, err := builder.Build(&Request{
		Entity: "Team",
		Fields: []string{"teamId"},
		Expand: map[string]*Expansion{"sponsors": {Fields: []string{"name"}}},
	})
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, KindUnknownRelationship, rejection.Kind)
	assert.Equal(t, "sponsors", rejection.Path)
}

func TestBuildDeniedField(t *testing.T) {
	builder := newTestBuilder(t)

	_, err := builder.Build(&Request{Entity: "Team", Fields: []string{"teamId", "ingestedAt"}})
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, KindFieldDenied, rejection.Kind)
	assert.Equal(t, "ingestedAt", rejection.Path)
}

func TestBuildEmptySelection(t *testing.T) {
	builder := newTestBuilder(t)

	t.Run("root with no fields", func(t *testing.T) {
		_, err := builder.Build(&Request{Entity: "Team"})
		rejection, ok := AsRejection(err)
		require.True(t, ok)
		assert.Equal(t, KindEmptySelection, rejection.Kind)
		assert.Empty(t, rejection.Path)
	})

	t.Run("expansion with no fields", func(t *testing.T) {
		_, err := builder.Build(&Request{
			Entity: "Game",
			Fields: []string{"gameId"},
			Expand: map[string]*Expansion{"homeTeam": {}},
		})
		rejection, ok := AsRejection(err)
		require.True(t, ok)
		assert.Equal(t, KindEmptySelection, rejection.Kind)
		assert.Equal(t, "homeTeam", rejection.Path)
	})

	t.Run("fieldless expansion with a sub-expansion is fine", func(t *testing.T) {
		plan, err := builder.Build(&Request{
			Entity: "Game",
			Fields: []string{"gameId"},
			Expand: map[string]*Expansion{
				"homeTeam": {
					Expand: map[string]*Expansion{
						"roster": {Fields: []string{"position"}},
					},
				},
			},
		})
		require.NoError(t, err)
		assert.Empty(t, plan.Expand["homeTeam"].Fields)
	})
}

func TestBuildNullExpansionEntry(t *testing.T) {
	// A JSON null expansion value decodes to a nil map entry; it must come
	// back as a rejection, never a panic.
	raw := `{"entity": "Game", "fields": ["gameId"], "expand": {"homeTeam": null}}`
	var req Request
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	require.Nil(t, req.Expand["homeTeam"])

	_, err := newTestBuilder(t).Build(&req)
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, KindEmptySelection, rejection.Kind)
	assert.Equal(t, "homeTeam", rejection.Path)
}

func TestBuildNestedPathInRejection(t *testing.T) {
	builder := newTestBuilder(t)

	_, err := builder.Build(&Request{
		Entity: "Game",
		Fields: []string{"gameId"},
		Expand: map[string]*Expansion{
			"homeTeam": {
				Fields: []string{"school"},
				Expand: map[string]*Expansion{
					"roster": {Fields: []string{"position", "salary"}},
				},
			},
		},
	})
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, KindUnknownField, rejection.Kind)
	assert.Equal(t, "homeTeam.roster.salary", rejection.Path)
}

func TestDepthBoundary(t *testing.T) {
	builder := newTestBuilder(t)

	// Game -> homeTeam -> roster -> athlete -> injuryHistory is depth 4,
	// exactly at the default maximum.
	atLimit := &Request{
		Entity: "Game",
		Fields: []string{"gameId"},
		Expand: map[string]*Expansion{
			"homeTeam": {
				Fields: []string{"school"},
				Expand: map[string]*Expansion{
					"roster": {
						Fields: []string{"position"},
						Expand: map[string]*Expansion{
							"athlete": {
								Fields: []string{"lastName"},
								Expand: map[string]*Expansion{
									"injuryHistory": {Fields: []string{"status"}},
								},
							},
						},
					},
				},
			},
		},
	}
	_, err := builder.Build(atLimit)
	assert.NoError(t, err)

	// One more hop through the Team -> Game cycle pushes past the bound.
	overLimit := &Request{
		Entity: "Game",
		Fields: []string{"gameId"},
		Expand: map[string]*Expansion{
			"homeTeam": {
				Fields: []string{"school"},
				Expand: map[string]*Expansion{
					"homeGames": {
						Fields: []string{"season"},
						Expand: map[string]*Expansion{
							"awayTeam": {
								Fields: []string{"school"},
								Expand: map[string]*Expansion{
									"roster": {
										Fields: []string{"position"},
										Expand: map[string]*Expansion{
											"injuryHistory": {Fields: []string{"status"}},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
	_, err = builder.Build(overLimit)
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, KindDepthExceeded, rejection.Kind)
	assert.Equal(t, "homeTeam.homeGames.awayTeam.roster.injuryHistory", rejection.Path)
	assert.Equal(t, float64(4), rejection.Max)
	assert.Equal(t, float64(5), rejection.Actual)
}

func TestFieldBudget(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxFields = 4
	builder := NewBuilder(testRegistry(t), opts)

	exact := &Request{
		Entity: "Team",
		Fields: []string{"teamId", "school", "conference"},
		Expand: map[string]*Expansion{
			"homeGames": {Fields: []string{"gameId"}},
		},
	}
	_, err := builder.Build(exact)
	assert.NoError(t, err, "exactly maxFields fields should succeed")

	over := &Request{
		Entity: "Team",
		Fields: []string{"teamId", "school", "conference"},
		Expand: map[string]*Expansion{
			"homeGames": {Fields: []string{"gameId", "season"}},
		},
	}
	_, err = builder.Build(over)
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, KindFieldBudgetExceeded, rejection.Kind)
	assert.Equal(t, "homeGames.season", rejection.Path, "overflow is attributed to the field that pushed past the budget")
	assert.Equal(t, float64(4), rejection.Max)
	assert.Equal(t, float64(5), rejection.Actual)
}

func TestComplexityRejection(t *testing.T) {
	opts := DefaultOptions()
	opts.ComplexityThreshold = 10
	builder := NewBuilder(testRegistry(t), opts)

	// lines is a to-many expansion: 1 + 2 fields * 2^1 * 5 = 21.
	_, err := builder.Build(&Request{
		Entity: "Game",
		Fields: []string{"gameId"},
		Expand: map[string]*Expansion{
			"lines": {Fields: []string{"spread", "overUnder"}},
		},
	})
	rejection, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, KindComplexityExceeded, rejection.Kind)
	assert.Equal(t, float64(10), rejection.Max)
	assert.Equal(t, float64(21), rejection.Actual)
}

func TestLimitPolicy(t *testing.T) {
	builder := newTestBuilder(t)

	t.Run("at the ceiling", func(t *testing.T) {
		plan, err := builder.Build(&Request{
			Entity: "Team",
			Fields: []string{"teamId"},
			Limit:  1000,
		})
		require.NoError(t, err)
		assert.Equal(t, 1000, plan.Limit)
	})

	t.Run("above the ceiling is rejected, not clamped", func(t *testing.T) {
		_, err := builder.Build(&Request{
			Entity: "Team",
			Fields: []string{"teamId"},
			Limit:  1001,
		})
		rejection, ok := AsRejection(err)
		require.True(t, ok)
		assert.Equal(t, KindLimitExceeded, rejection.Kind)
		assert.Equal(t, float64(1000), rejection.Max)
		assert.Equal(t, float64(1001), rejection.Actual)
	})

	t.Run("absent limit gets the default", func(t *testing.T) {
		plan, err := builder.Build(&Request{
			Entity: "Team",
			Fields: []string{"teamId"},
		})
		require.NoError(t, err)
		assert.Equal(t, 100, plan.Limit)
	})

	t.Run("nested limit above the ceiling is rejected", func(t *testing.T) {
		_, err := builder.Build(&Request{
			Entity: "Game",
			Fields: []string{"gameId"},
			Expand: map[string]*Expansion{
				"lines": {Fields: []string{"spread"}, Limit: 5000},
			},
		})
		rejection, ok := AsRejection(err)
		require.True(t, ok)
		assert.Equal(t, KindLimitExceeded, rejection.Kind)
	})
}

func TestNormalizationDeduplicatesFields(t *testing.T) {
	builder := newTestBuilder(t)

	plan, err := builder.Build(&Request{
		Entity: "Team",
		Fields: []string{"school", "teamId", "school", "conference", "teamId"},
		Expand: map[string]*Expansion{
			"homeGames": {Fields: []string{"gameId", "gameId", "season"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"school", "teamId", "conference"}, plan.Fields)
	assert.Equal(t, []string{"gameId", "season"}, plan.Expand["homeGames"].Fields)
}

func TestBuildIsDeterministic(t *testing.T) {
	builder := newTestBuilder(t)

	req := &Request{
		Entity:  "Game",
		Fields:  []string{"gameId", "season", "week"},
		Filters: []Filter{{Field: "season", Op: OpEqual, Value: 2024}},
		OrderBy: &Order{Field: "startDate", Direction: Ascending},
		Limit:   25,
		Expand: map[string]*Expansion{
			"homeTeam": {Fields: []string{"school"}},
			"lines":    {Fields: []string{"spread"}, Limit: 3},
		},
	}

	first, err := builder.Build(req)
	require.NoError(t, err)
	second, err := builder.Build(req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID, "each plan gets its own ID")
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
	assert.Equal(t, Render(first).Query, Render(second).Query)
	assert.Equal(t, Render(first).Variables, Render(second).Variables)
}

func TestPlanSoundness(t *testing.T) {
	builder := newTestBuilder(t)
	registry := builder.Registry()

	plan, err := builder.Build(&Request{
		Entity: "Game",
		Fields: []string{"gameId", "season"},
		Expand: map[string]*Expansion{
			"homeTeam": {
				Fields: []string{"school"},
				Expand: map[string]*Expansion{
					"roster": {Fields: []string{"position"}},
				},
			},
		},
	})
	require.NoError(t, err)

	var walk func(entity string, fields []string, expand map[string]*PlanNode)
	walk = func(entity string, fields []string, expand map[string]*PlanNode) {
		for _, field := range fields {
			_, exists := registry.LookupField(entity, field)
			assert.True(t, exists, "plan field %s.%s must resolve", entity, field)
		}
		for name, node := range expand {
			rel, exists := registry.LookupRelationship(entity, name)
			require.True(t, exists, "plan relationship %s.%s must resolve", entity, name)
			assert.Equal(t, rel.Target, node.Entity)
			walk(node.Entity, node.Fields, node.Expand)
		}
	}
	walk(plan.Entity, plan.Fields, plan.Expand)
}
