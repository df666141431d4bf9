package query

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"natours/internal/domain"
	"natours/internal/utils"
)

// Reserved control keys; everything else in the query string is a filter.
const (
	ParamPage   = "page"
	ParamSort   = "sort"
	ParamLimit  = "limit"
	ParamFields = "fields"
)

var reserved = map[string]struct{}{
	ParamPage:   {},
	ParamSort:   {},
	ParamLimit:  {},
	ParamFields: {},
}

// Stage transforms the Spec from the raw query. Stages do not depend on each
// other's output and can run in any order.
type Stage func(p *Pipeline, raw url.Values, spec *Spec) error

// DefaultStages is filter, sort, field selection, pagination.
func DefaultStages() []Stage {
	return []Stage{FilterStage, SortStage, FieldsStage, PaginateStage}
}

// FilterStage turns non-reserved keys into predicates. `field=value` is an
// equality; `field[op]=value` uses one of the closed operator set. When a key
// repeats, the last value wins.
func FilterStage(p *Pipeline, raw url.Values, spec *Spec) error {
	type key struct {
		field string
		op    Op
	}
	found := map[key]Predicate{}

	for param, values := range raw {
		if _, skip := reserved[param]; skip || len(values) == 0 {
			continue
		}

		name, opToken, err := splitFilterKey(param)
		if err != nil {
			return err
		}
		op, ok := ParseOp(opToken)
		if !ok {
			return domain.InvalidQueryError{Param: param, Msg: "unknown operator " + strconv.Quote(opToken)}
		}

		field, ok := p.schema.Lookup(name)
		if !ok {
			return domain.InvalidQueryError{Param: param, Msg: "unknown field"}
		}
		if !p.filterable(name) {
			return domain.InvalidQueryError{Param: param, Msg: "field is not filterable"}
		}

		value, err := coerce(field, values[len(values)-1])
		if err != nil {
			return domain.InvalidQueryError{Param: param, Msg: err.Error()}
		}
		found[key{name, op}] = Predicate{Field: name, Op: op, Value: value}
	}

	preds := make([]Predicate, 0, len(found))
	for _, pr := range found {
		preds = append(preds, pr)
	}
	sort.Slice(preds, func(i, j int) bool {
		if preds[i].Field != preds[j].Field {
			return preds[i].Field < preds[j].Field
		}
		return opOrder[preds[i].Op] < opOrder[preds[j].Op]
	})
	spec.Predicates = preds
	return nil
}

// splitFilterKey parses "price" into (price, eq) and "price[gte]" into
// (price, gte).
func splitFilterKey(param string) (string, string, error) {
	open := strings.IndexByte(param, '[')
	if open < 0 {
		if strings.ContainsRune(param, ']') || strings.TrimSpace(param) == "" {
			return "", "", domain.InvalidQueryError{Param: param, Msg: "malformed filter key"}
		}
		return param, string(OpEq), nil
	}
	if open == 0 || !strings.HasSuffix(param, "]") {
		return "", "", domain.InvalidQueryError{Param: param, Msg: "malformed filter key"}
	}
	op := param[open+1 : len(param)-1]
	if op == "" || strings.ContainsAny(op, "[]") {
		return "", "", domain.InvalidQueryError{Param: param, Msg: "malformed filter key"}
	}
	return param[:open], op, nil
}

func coerce(f Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f.Kind {
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errExpected(f.Kind)
		}
		return n, nil
	case KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errExpected(f.Kind)
		}
		return n, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errExpected(f.Kind)
		}
		return b, nil
	case KindTime:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, errExpected(f.Kind)
		}
		return t, nil
	default:
		return raw, nil
	}
}

type coerceError struct{ kind Kind }

func (e coerceError) Error() string { return "expected a " + e.kind.String() + " value" }

func errExpected(k Kind) error { return coerceError{kind: k} }

// SortStage parses `sort=-price,ratingsAverage`. A leading '-' sorts
// descending. The id field is appended as a final tie-breaker so page
// boundaries are deterministic.
func SortStage(p *Pipeline, raw url.Values, spec *Spec) error {
	var keys []SortKey
	seen := map[string]struct{}{}

	if v, ok := lastValue(raw, ParamSort); ok {
		for _, part := range utils.SplitList(v) {
			dir := Asc
			if strings.HasPrefix(part, "-") {
				dir = Desc
				part = strings.TrimSpace(part[1:])
			}
			if _, ok := p.schema.Lookup(part); !ok {
				return domain.InvalidQueryError{Param: ParamSort, Msg: "unknown field " + strconv.Quote(part)}
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			keys = append(keys, SortKey{Field: part, Direction: dir})
		}
	}

	if len(keys) == 0 {
		for _, k := range p.schema.DefaultSort {
			seen[k.Field] = struct{}{}
			keys = append(keys, k)
		}
	}
	if _, ok := seen[p.schema.IDField]; !ok {
		keys = append(keys, SortKey{Field: p.schema.IDField, Direction: Asc})
	}
	spec.Sort = keys
	return nil
}

// FieldsStage parses `fields=name,price` (inclusion) or
// `fields=-description,-summary` (exclusion). Mixing both is rejected.
func FieldsStage(p *Pipeline, raw url.Values, spec *Spec) error {
	v, ok := lastValue(raw, ParamFields)
	if !ok {
		spec.Projection = Projection{Mode: ProjectAll}
		return nil
	}

	var (
		mode   = ProjectAll
		fields []string
		seen   = map[string]struct{}{}
	)
	for _, part := range utils.SplitList(v) {
		m := ProjectInclude
		if strings.HasPrefix(part, "-") {
			m = ProjectExclude
			part = strings.TrimSpace(part[1:])
		}
		if mode != ProjectAll && mode != m {
			return domain.InvalidQueryError{Param: ParamFields, Msg: "cannot mix included and excluded fields"}
		}
		mode = m
		if _, ok := p.schema.Lookup(part); !ok {
			return domain.InvalidQueryError{Param: ParamFields, Msg: "unknown field " + strconv.Quote(part)}
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		fields = append(fields, part)
	}
	if mode == ProjectExclude {
		for _, f := range fields {
			if f == p.schema.IDField {
				return domain.InvalidQueryError{Param: ParamFields, Msg: "the id field cannot be excluded"}
			}
		}
	}
	spec.Projection = Projection{Mode: mode, Fields: fields}
	return nil
}

// PaginateStage reads page (default 1) and limit (default from options,
// clamped to the configured maximum).
func PaginateStage(p *Pipeline, raw url.Values, spec *Spec) error {
	spec.Page = 1
	spec.Limit = p.opts.DefaultLimit

	if v, ok := lastValue(raw, ParamPage); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return domain.InvalidQueryError{Param: ParamPage, Msg: "must be a positive integer"}
		}
		spec.Page = n
		spec.PageRequested = true
	}
	if v, ok := lastValue(raw, ParamLimit); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return domain.InvalidQueryError{Param: ParamLimit, Msg: "must be a positive integer"}
		}
		spec.Limit = n
	}
	if spec.Limit > p.opts.MaxLimit {
		spec.Limit = p.opts.MaxLimit
	}
	if spec.Page-1 > math.MaxInt/spec.Limit {
		return domain.InvalidQueryError{Param: ParamPage, Msg: "page is out of range"}
	}
	return nil
}

// lastValue returns the last non-empty occurrence of key, so a polluted
// query string like `sort=price&sort=-price` resolves to the final value.
func lastValue(raw url.Values, key string) (string, bool) {
	vs := raw[key]
	if len(vs) == 0 {
		return "", false
	}
	v := strings.TrimSpace(vs[len(vs)-1])
	return v, v != ""
}
