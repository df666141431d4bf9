package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"natours/internal/domain"
	"natours/internal/query"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/segmentio/ksuid"
)

// Document is a projected record keyed by public field name.
type Document map[string]any

const mysqlDuplicateEntry = 1062

// NewID returns a sortable, globally unique document id.
func NewID() domain.ID {
	return domain.ID(ksuid.New().String())
}

// storeErr maps driver errors onto the domain taxonomy: missing rows become
// NotFound, duplicate keys become Conflict, the rest StoreUnavailable.
func storeErr(resource, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return domain.ConflictError{Resource: resource, Msg: "duplicate value", Err: err}
	}
	return domain.StoreUnavailableError{Op: op, Err: err}
}

func countDocuments(ctx context.Context, db *sqlx.DB, q *query.Query) (int, error) {
	stmt, args := q.CountSQL()
	var n int
	if err := db.GetContext(ctx, &n, stmt, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func listDocuments(ctx context.Context, db *sqlx.DB, q *query.Query) ([]Document, error) {
	stmt, args := q.SelectSQL()
	rows, err := db.QueryxContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := q.Columns()
	out := []Document{}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		if len(vals) != len(cols) {
			return nil, fmt.Errorf("scan: got %d columns, want %d", len(vals), len(cols))
		}
		doc := make(Document, len(cols))
		for i, f := range cols {
			v, err := decodeValue(f.Kind, vals[i])
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", f.Name, err)
			}
			doc[f.Name] = v
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

const mysqlDateTime = "2006-01-02 15:04:05"

// decodeValue normalizes what the driver hands back (typed values on the
// binary protocol, []byte on the text protocol) to the field's kind.
func decodeValue(kind query.Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	switch kind {
	case query.KindInt:
		switch x := v.(type) {
		case int64:
			return x, nil
		case float64:
			return int64(x), nil
		case string:
			return strconv.ParseInt(x, 10, 64)
		}
	case query.KindNumber:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case string:
			return strconv.ParseFloat(x, 64)
		}
	case query.KindBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case int64:
			return x != 0, nil
		case string:
			return strconv.ParseBool(x)
		}
	case query.KindTime:
		switch x := v.(type) {
		case time.Time:
			return x.UTC(), nil
		case string:
			return time.ParseInLocation(mysqlDateTime, x, time.UTC)
		}
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	}
	return nil, fmt.Errorf("unexpected %T for %s column", v, kind)
}

// requireAffected turns a write that touched nothing into NotFound. The pool
// is opened with CLIENT_FOUND_ROWS so unchanged rows still count.
func requireAffected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.StoreUnavailableError{Op: "rows affected", Err: err}
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
