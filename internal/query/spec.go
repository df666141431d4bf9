package query

// Predicate is one field comparison.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type SortKey struct {
	Field     string
	Direction Direction
}

type ProjectionMode int

const (
	ProjectAll ProjectionMode = iota
	ProjectInclude
	ProjectExclude
)

type Projection struct {
	Mode   ProjectionMode
	Fields []string
}

// Spec is the normalized form of a client's filter/sort/select/page request.
// It is built once per request, compiled into a Query and then discarded.
type Spec struct {
	Predicates    []Predicate
	Sort          []SortKey
	Projection    Projection
	Page          int
	Limit         int
	PageRequested bool
}

// Skip is the number of records before the requested page.
func (s Spec) Skip() int {
	return (s.Page - 1) * s.Limit
}
