package schema

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed gridiron.yaml
var defaultSchema []byte

// schemaFile mirrors the on-disk YAML schema definition format.
type schemaFile struct {
	Entities []entityDef `yaml:"entities"`
}

type entityDef struct {
	Name          string            `yaml:"name"`
	Description   string            `yaml:"description"`
	QueryField    string            `yaml:"queryField"`
	Fields        map[string]string `yaml:"fields"`
	Relationships []relationshipDef `yaml:"relationships"`
}

type relationshipDef struct {
	Name        string `yaml:"name"`
	Target      string `yaml:"target"`
	Cardinality string `yaml:"cardinality"`
}

// Load reads a YAML schema definition and builds a Registry from it.
func Load(r io.Reader) (*Registry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema definition: %w", err)
	}

	var file schemaFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schema definition: %w", err)
	}
	if len(file.Entities) == 0 {
		return nil, fmt.Errorf("schema definition contains no entities")
	}

	entities := make([]*EntitySchema, 0, len(file.Entities))
	for _, def := range file.Entities {
		entity, err := buildEntity(def)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	return NewRegistry(entities)
}

// LoadFile builds a Registry from the schema definition at the given path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer f.Close()

	registry, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return registry, nil
}

// LoadDefault builds a Registry from the embedded college football schema.
func LoadDefault() (*Registry, error) {
	var file schemaFile
	if err := yaml.Unmarshal(defaultSchema, &file); err != nil {
		return nil, fmt.Errorf("failed to parse embedded schema: %w", err)
	}

	entities := make([]*EntitySchema, 0, len(file.Entities))
	for _, def := range file.Entities {
		entity, err := buildEntity(def)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	return NewRegistry(entities)
}

func buildEntity(def entityDef) (*EntitySchema, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("entity with empty name")
	}
	if len(def.Fields) == 0 {
		return nil, fmt.Errorf("entity %s has no fields", def.Name)
	}

	entity := &EntitySchema{
		Name:          def.Name,
		Description:   def.Description,
		QueryField:    def.QueryField,
		Fields:        make(map[string]FieldType, len(def.Fields)),
		Relationships: make(map[string]*Relationship, len(def.Relationships)),
	}
	if entity.QueryField == "" {
		entity.QueryField = lowerFirst(def.Name)
	}

	for name, typeName := range def.Fields {
		fieldType, err := ParseFieldType(typeName)
		if err != nil {
			return nil, fmt.Errorf("entity %s, field %s: %w", def.Name, name, err)
		}
		entity.Fields[name] = fieldType
	}

	for _, relDef := range def.Relationships {
		if relDef.Name == "" {
			return nil, fmt.Errorf("entity %s has a relationship with an empty name", def.Name)
		}
		if _, exists := entity.Relationships[relDef.Name]; exists {
			return nil, fmt.Errorf("entity %s: duplicate relationship %s", def.Name, relDef.Name)
		}
		cardinality, err := ParseCardinality(relDef.Cardinality)
		if err != nil {
			return nil, fmt.Errorf("entity %s, relationship %s: %w", def.Name, relDef.Name, err)
		}
		entity.Relationships[relDef.Name] = &Relationship{
			Source:      def.Name,
			Name:        relDef.Name,
			Target:      relDef.Target,
			Cardinality: cardinality,
		}
	}

	return entity, nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}
