package query

import (
	"strings"

	"natours/internal/domain"
)

// Query is the executable form of a Spec. Identifiers in the generated SQL
// come from the schema only; every client value is a placeholder argument.
type Query struct {
	Spec Spec

	schema  *Schema
	columns []Field
	where   string
	args    []any
	orderBy string
}

func compile(s *Schema, spec Spec) *Query {
	q := &Query{Spec: spec, schema: s}
	q.columns = project(s, spec.Projection)

	var (
		conds []string
		args  []any
	)
	for _, pr := range s.Scope {
		conds = append(conds, quoteIdent(s.field(pr.Field).Column)+" "+pr.Op.SQL()+" ?")
		args = append(args, pr.Value)
	}
	for _, pr := range spec.Predicates {
		conds = append(conds, quoteIdent(s.field(pr.Field).Column)+" "+pr.Op.SQL()+" ?")
		args = append(args, pr.Value)
	}
	if len(conds) > 0 {
		q.where = " WHERE " + strings.Join(conds, " AND ")
	}
	q.args = args

	order := make([]string, 0, len(spec.Sort))
	for _, k := range spec.Sort {
		dir := "ASC"
		if k.Direction == Desc {
			dir = "DESC"
		}
		order = append(order, quoteIdent(s.field(k.Field).Column)+" "+dir)
	}
	if len(order) > 0 {
		q.orderBy = " ORDER BY " + strings.Join(order, ", ")
	}
	return q
}

func project(s *Schema, pr Projection) []Field {
	listed := make(map[string]struct{}, len(pr.Fields))
	for _, f := range pr.Fields {
		listed[f] = struct{}{}
	}

	out := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Internal {
			continue
		}
		_, in := listed[f.Name]
		switch pr.Mode {
		case ProjectInclude:
			if !in && f.Name != s.IDField {
				continue
			}
		case ProjectExclude:
			if in {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

func (q *Query) Skip() int { return q.Spec.Skip() }
func (q *Query) Take() int { return q.Spec.Limit }

// Columns lists the projected fields in schema order.
func (q *Query) Columns() []Field { return q.columns }

// Where returns the WHERE clause (with leading space, or empty) and its args.
func (q *Query) Where() (string, []any) {
	return q.where, append([]any(nil), q.args...)
}

func (q *Query) SelectSQL() (string, []any) {
	cols := make([]string, len(q.columns))
	for i, f := range q.columns {
		cols[i] = quoteIdent(f.Column)
	}
	sql := "SELECT " + strings.Join(cols, ", ") + " FROM " + quoteIdent(q.schema.Table) +
		q.where + q.orderBy + " LIMIT ? OFFSET ?"
	args := append(append([]any(nil), q.args...), q.Take(), q.Skip())
	return sql, args
}

func (q *Query) CountSQL() (string, []any) {
	return "SELECT COUNT(*) FROM " + quoteIdent(q.schema.Table) + q.where, append([]any(nil), q.args...)
}

// CheckPage rejects an explicitly requested page that lies past the last
// record. The first page is always valid, even for an empty collection.
func (q *Query) CheckPage(total int) error {
	if !q.Spec.PageRequested || q.Spec.Page <= 1 {
		return nil
	}
	if q.Skip() >= total {
		return domain.InvalidPageError{Page: q.Spec.Page, Total: total}
	}
	return nil
}
