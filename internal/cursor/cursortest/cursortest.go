// Package cursortest provides an in-memory cursor.Cursor for tests.
package cursortest

import "errors"

var ErrClosed = errors.New("cursor closed")

type Cursor struct {
	columns []string
	rows    [][]interface{}
	pos     int
	closed  bool
	err     error

	columnReads int
}

func New(columns []string, rows ...[]interface{}) *Cursor {
	return &Cursor{columns: columns, rows: rows, pos: -1}
}

// WithErr makes Err report err once iteration finishes.
func (c *Cursor) WithErr(err error) *Cursor {
	c.err = err
	return c
}

func (c *Cursor) Next() bool {
	if c.closed || c.pos+1 >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *Cursor) Columns() ([]string, error) {
	c.columnReads++
	if c.closed {
		return nil, ErrClosed
	}
	return c.columns, nil
}

func (c *Cursor) SliceScan() ([]interface{}, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, errors.New("cursor not positioned on a row")
	}
	values := make([]interface{}, len(c.rows[c.pos]))
	copy(values, c.rows[c.pos])
	return values, nil
}

func (c *Cursor) Err() error {
	return c.err
}

func (c *Cursor) Close() error {
	c.closed = true
	return nil
}

func (c *Cursor) Closed() bool {
	return c.closed
}

// ColumnReads counts calls to Columns since New or Reset.
func (c *Cursor) ColumnReads() int {
	return c.columnReads
}

// Reset rewinds the cursor so the same rows can be read again.
func (c *Cursor) Reset() {
	c.pos = -1
	c.closed = false
	c.columnReads = 0
}
