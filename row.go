package rqwire

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/rqwire/rqwire/errs"
)

// Row is one result row: an ordered sequence of decoded JSON values,
// positionally aligned with the statement's declared columns. Rows are
// immutable; typed access happens per call via the accessors below.
//
// Integer values are held as json.Number (the response body is decoded with
// UseNumber), so they survive without loss until the caller asks for a type.
type Row struct {
	values []any
	types  []ColumnType
}

// Len returns the number of values in the row.
func (r *Row) Len() int {
	return len(r.values)
}

// Value returns the raw decoded JSON value at index i.
func (r *Row) Value(i int) (any, error) {
	if err := r.check(i); err != nil {
		return nil, err
	}
	return r.values[i], nil
}

// IsNull reports whether the value at index i is SQL NULL.
func (r *Row) IsNull(i int) (bool, error) {
	if err := r.check(i); err != nil {
		return false, err
	}
	return r.values[i] == nil, nil
}

// Int returns the value at index i as an int64.
func (r *Row) Int(i int) (int64, error) {
	if err := r.check(i); err != nil {
		return 0, err
	}
	num, ok := r.values[i].(json.Number)
	if !ok {
		return 0, r.coerceErr(i, "integer")
	}
	n, err := num.Int64()
	if err != nil {
		return 0, errs.Wrap(errs.KindDataSer, fmt.Sprintf("cannot read row element %d as integer", i), err)
	}
	return n, nil
}

// Float returns the value at index i as a float64.
func (r *Row) Float(i int) (float64, error) {
	if err := r.check(i); err != nil {
		return 0, err
	}
	num, ok := r.values[i].(json.Number)
	if !ok {
		return 0, r.coerceErr(i, "real")
	}
	f, err := num.Float64()
	if err != nil {
		return 0, errs.Wrap(errs.KindDataSer, fmt.Sprintf("cannot read row element %d as real", i), err)
	}
	return f, nil
}

// String returns the value at index i as a string.
func (r *Row) String(i int) (string, error) {
	if err := r.check(i); err != nil {
		return "", err
	}
	s, ok := r.values[i].(string)
	if !ok {
		return "", r.coerceErr(i, "text")
	}
	return s, nil
}

// Blob returns the value at index i as raw bytes. Blob values arrive
// base64-encoded on the wire.
func (r *Row) Blob(i int) ([]byte, error) {
	if err := r.check(i); err != nil {
		return nil, err
	}
	s, ok := r.values[i].(string)
	if !ok {
		return nil, r.coerceErr(i, "blob")
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(errs.KindDataSer, fmt.Sprintf("cannot read row element %d as blob", i), err)
	}
	return b, nil
}

// Get returns the value at index i reinterpreted as T via a JSON round-trip.
// It covers targets the typed accessors do not, e.g. a struct decoded from a
// JSON text column.
func Get[T any](r *Row, i int) (T, error) {
	var out T
	if err := r.check(i); err != nil {
		return out, err
	}
	raw, err := json.Marshal(r.values[i])
	if err != nil {
		return out, errs.Wrap(errs.KindDataSer, fmt.Sprintf("cannot encode row element %d", i), err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, errs.Wrap(errs.KindDataSer, fmt.Sprintf("cannot read row element %d as %T", i, out), err)
	}
	return out, nil
}

// check validates the index against the row bounds.
func (r *Row) check(i int) error {
	if i < 0 || i >= len(r.values) {
		return errs.New(errs.KindDataSer, fmt.Sprintf("row element with index %d doesn't exist", i))
	}
	return nil
}

func (r *Row) coerceErr(i int, want string) *errs.Error {
	return errs.New(errs.KindDataSer,
		fmt.Sprintf("cannot read row element %d as %s (value is %T)", i, want, r.values[i]))
}
