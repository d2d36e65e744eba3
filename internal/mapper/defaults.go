package mapper

import "uk.co.dudmesh.smsync/internal/cursor"

// stringOrEmpty reads f as text, "" when the column is absent or NULL.
func stringOrEmpty(row *cursor.Row, columns MessageColumns, f Field) string {
	i, ok := columns.Lookup(f)
	if !ok {
		return ""
	}
	value, ok := row.String(i)
	if !ok {
		return ""
	}
	return value
}

// int64Or reads f as an integer, fallback when the column is absent. A NULL
// value reads as 0 like any integer getter on a cursor.
func int64Or(row *cursor.Row, columns MessageColumns, f Field, fallback int64) int64 {
	i, ok := columns.Lookup(f)
	if !ok {
		return fallback
	}
	return row.Int64(i)
}

func intOr(row *cursor.Row, columns MessageColumns, f Field, fallback int) int {
	return int(int64Or(row, columns, f, int64(fallback)))
}

// flag reads f as a boolean, nonzero is true and absent is false.
func flag(row *cursor.Row, columns MessageColumns, f Field) bool {
	return int64Or(row, columns, f, 0) != 0
}
