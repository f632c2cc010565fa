package rqwire

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rqwire/rqwire/errs"
)

const (
	executeEndpoint = "/db/request"
	queryEndpoint   = "/db/query"
)

// resultEnvelope is the JSON envelope returned by the statement endpoints.
type resultEnvelope struct {
	Results []wireResult `json:"results"`
}

// wireResult is one statement's outcome. Reads carry columns/types/values,
// writes carry last_insert_id/rows_affected; a rejected statement carries
// only an error string.
type wireResult struct {
	Columns      []string `json:"columns,omitempty"`
	Types        []string `json:"types,omitempty"`
	Values       [][]any  `json:"values,omitempty"`
	LastInsertID *int64   `json:"last_insert_id,omitempty"`
	RowsAffected *int64   `json:"rows_affected,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Cursor holds the decoded outcome of one statement: the declared columns
// and types, the buffered rows, and the affected-row counts for DML. It is
// bound to one Execute/Query call; run another statement to get a new one.
type Cursor struct {
	columns      []string
	types        []ColumnType
	values       [][]any
	rowsAffected int64
	lastInsertID int64
	pos          int
}

// Execute runs a parameterized statement (read or write) and returns a
// Cursor over its result.
//
// Parameters are JSON-encoded as-is and sent positionally; the client never
// quotes or escapes SQL. Always use placeholders, never string
// concatenation:
//
//	cur, err := conn.Execute(ctx, "INSERT INTO foo(name) VALUES (?)", "fiona")
//	if err == nil && cur.RowsAffected() == 1 {
//	    // fiona is now a member of foo
//	}
func (c *Connection) Execute(ctx context.Context, sql string, params ...any) (*Cursor, error) {
	return c.statement(ctx, executeEndpoint, sql, params)
}

// Query runs a read-only statement (SELECT) and returns a Cursor over the
// resulting rows.
func (c *Connection) Query(ctx context.Context, sql string, params ...any) (*Cursor, error) {
	return c.statement(ctx, queryEndpoint, sql, params)
}

func (c *Connection) statement(ctx context.Context, endpoint, sql string, params []any) (*Cursor, error) {
	stmt := make([]any, 0, len(params)+1)
	stmt = append(stmt, sql)
	stmt = append(stmt, params...)

	resp, err := c.request(ctx, http.MethodPost, endpoint, []any{stmt})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, errs.New(errs.KindSQL,
			fmt.Sprintf("unexpected status code %d from %s", resp.status, endpoint))
	}

	var top any
	if err := decodeJSON(resp.body, &top); err != nil {
		return nil, err
	}
	if _, ok := top.(map[string]any); !ok {
		return nil, errs.New(errs.KindSQL, "error deserializing response body")
	}

	var envelope resultEnvelope
	if err := decodeJSON(resp.body, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Results) == 0 {
		return nil, errs.New(errs.KindSQL, "response contains no results")
	}

	res := envelope.Results[0]
	if res.Error != "" {
		return nil, errs.New(errs.KindSQL, res.Error)
	}

	types, err := parseColumnTypes(res.Types)
	if err != nil {
		return nil, err
	}

	cur := &Cursor{
		columns: res.Columns,
		types:   types,
		values:  res.Values,
	}
	if res.RowsAffected != nil {
		cur.rowsAffected = *res.RowsAffected
	}
	if res.LastInsertID != nil {
		cur.lastInsertID = *res.LastInsertID
	}
	return cur, nil
}

// Columns returns the result's column names, in declared order.
func (c *Cursor) Columns() []string {
	return c.columns
}

// Types returns the declared column types, parallel to Columns.
func (c *Cursor) Types() []ColumnType {
	return c.types
}

// NumRows returns the number of buffered rows.
func (c *Cursor) NumRows() int {
	return len(c.values)
}

// RowsAffected returns the number of rows changed by a DML statement.
func (c *Cursor) RowsAffected() int64 {
	return c.rowsAffected
}

// LastInsertID returns the rowid generated by the most recent INSERT.
func (c *Cursor) LastInsertID() int64 {
	return c.lastInsertID
}

// Next returns the next row, or nil when the result set is exhausted. The
// full set is already buffered; use Reset to iterate again.
func (c *Cursor) Next() *Row {
	if c.pos >= len(c.values) {
		return nil
	}
	row := &Row{values: c.values[c.pos], types: c.types}
	c.pos++
	return row
}

// Reset rewinds the cursor to the first row.
func (c *Cursor) Reset() {
	c.pos = 0
}
