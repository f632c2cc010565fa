package rqwire

import (
	"fmt"

	"github.com/rqwire/rqwire/errs"
)

// ColumnType is the declared SQLite storage class of a result column.
type ColumnType int

const (
	TypeNull ColumnType = iota
	TypeInteger
	TypeReal
	TypeText
	TypeBlob
)

func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeReal:
		return "real"
	case TypeText:
		return "text"
	case TypeBlob:
		return "blob"
	default:
		return "null"
	}
}

// ParseColumnType maps a lowercase type tag from the wire protocol to a
// ColumnType. The empty string denotes Null. Any other tag is rejected,
// schema drift in the protocol should fail loudly, not coerce silently.
func ParseColumnType(tag string) (ColumnType, error) {
	switch tag {
	case "":
		return TypeNull, nil
	case "integer":
		return TypeInteger, nil
	case "real":
		return TypeReal, nil
	case "text":
		return TypeText, nil
	case "blob":
		return TypeBlob, nil
	default:
		return TypeNull, errs.New(errs.KindDataSer, fmt.Sprintf("unknown sqlite type %q", tag))
	}
}

// parseColumnTypes maps a slice of wire tags, failing on the first unknown tag.
func parseColumnTypes(tags []string) ([]ColumnType, error) {
	types := make([]ColumnType, len(tags))
	for i, tag := range tags {
		t, err := ParseColumnType(tag)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}
