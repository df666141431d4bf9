package query

import (
	"fmt"
	"strings"
)

// Kind drives coercion of raw query-string values.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindNumber
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindTime:
		return "time"
	default:
		return "string"
	}
}

// Field maps a public (API) field name to its stored column.
type Field struct {
	Name   string
	Column string
	Kind   Kind
	// Internal fields stay server side: they cannot be filtered, sorted or
	// projected by clients and are only reachable through Schema.Scope.
	Internal bool
}

// Schema describes one collection to the pipeline.
type Schema struct {
	Table   string
	IDField string
	Fields  []Field
	// DefaultSort applies when the client sends no sort parameter.
	DefaultSort []SortKey
	// Scope predicates are always applied, e.g. hiding deactivated users.
	Scope []Predicate

	byName map[string]Field
}

func (s *Schema) index() error {
	if s.Table == "" {
		return fmt.Errorf("query schema: table is required")
	}
	if s.IDField == "" {
		s.IDField = "id"
	}
	s.byName = make(map[string]Field, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" || f.Column == "" {
			return fmt.Errorf("query schema %s: field needs name and column", s.Table)
		}
		if _, dup := s.byName[f.Name]; dup {
			return fmt.Errorf("query schema %s: duplicate field %q", s.Table, f.Name)
		}
		s.byName[f.Name] = f
	}
	if _, ok := s.byName[s.IDField]; !ok {
		return fmt.Errorf("query schema %s: id field %q not declared", s.Table, s.IDField)
	}
	for _, k := range s.DefaultSort {
		if _, ok := s.byName[k.Field]; !ok {
			return fmt.Errorf("query schema %s: default sort field %q not declared", s.Table, k.Field)
		}
	}
	for _, p := range s.Scope {
		if _, ok := s.byName[p.Field]; !ok {
			return fmt.Errorf("query schema %s: scope field %q not declared", s.Table, p.Field)
		}
	}
	return nil
}

// Lookup finds a public field by API name.
func (s *Schema) Lookup(name string) (Field, bool) {
	f, ok := s.byName[name]
	if !ok || f.Internal {
		return Field{}, false
	}
	return f, true
}

func (s *Schema) field(name string) Field {
	return s.byName[name]
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
