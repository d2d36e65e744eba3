// Package cursor wraps provider query results as positioned rows with typed,
// null-aware accessors.
package cursor

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cursor is the subset of *sqlx.Rows the mappers depend on.
type Cursor interface {
	Next() bool
	Columns() ([]string, error)
	SliceScan() ([]interface{}, error)
	Err() error
	Close() error
}

// Row is one scanned tuple together with the column names of its query shape.
type Row struct {
	columns Columns
	values  []interface{}
}

func NewRow(names []string, values []interface{}) *Row {
	return &Row{columns: NewColumns(names), values: values}
}

// Scan reads the tuple the cursor is currently positioned on.
func Scan(c Cursor) (*Row, error) {
	names, err := c.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}
	return scan(c, NewColumns(names), len(names))
}

func scan(c Cursor, columns Columns, width int) (*Row, error) {
	values, err := c.SliceScan()
	if err != nil {
		return nil, fmt.Errorf("scanning row: %w", err)
	}
	if width != len(values) {
		return nil, fmt.Errorf("expected %d values, got %d", width, len(values))
	}
	return &Row{columns: columns, values: values}, nil
}

// Each calls fn for every remaining row and closes the cursor.
func Each(c Cursor, fn func(row *Row) error) error {
	names, err := c.Columns()
	if err != nil {
		c.Close()
		return fmt.Errorf("reading columns: %w", err)
	}
	return EachNamed(c, names, fn)
}

// EachNamed is Each for callers that already read the cursor's column names.
// Every row shares one column table built from names.
func EachNamed(c Cursor, names []string, fn func(row *Row) error) error {
	defer c.Close()

	columns := NewColumns(names)
	for c.Next() {
		row, err := scan(c, columns, len(names))
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	if err := c.Err(); err != nil {
		return fmt.Errorf("iterating rows: %w", err)
	}
	return nil
}

func (r *Row) Columns() Columns {
	return r.columns
}

func (r *Row) HasColumn(name string) bool {
	return r.columns.Has(name)
}

func (r *Row) Len() int {
	return len(r.values)
}

func (r *Row) IsNull(i int) bool {
	return r.values[i] == nil
}

// String returns the value at i as text. ok is false when the stored value is NULL.
func (r *Row) String(i int) (value string, ok bool) {
	switch v := r.values[i].(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	default:
		return fmt.Sprint(v), true
	}
}

// Int64 returns the value at i as an integer. NULL and non numeric text read as 0.
func (r *Row) Int64(i int) int64 {
	switch v := r.values[i].(type) {
	case nil:
		return 0
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		return parseInt(v)
	case []byte:
		return parseInt(string(v))
	default:
		return 0
	}
}

func (r *Row) Int(i int) int {
	return int(r.Int64(i))
}

// Bool treats any nonzero integer as true.
func (r *Row) Bool(i int) bool {
	return r.Int64(i) != 0
}

func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}
