package rqwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rqwire/rqwire/errs"
)

func TestParseColumnType(t *testing.T) {
	tests := []struct {
		tag  string
		want ColumnType
	}{
		{tag: "", want: TypeNull},
		{tag: "integer", want: TypeInteger},
		{tag: "real", want: TypeReal},
		{tag: "text", want: TypeText},
		{tag: "blob", want: TypeBlob},
	}

	for _, tt := range tests {
		t.Run("tag "+tt.tag, func(t *testing.T) {
			got, err := ParseColumnType(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColumnTypeUnknown(t *testing.T) {
	for _, tag := range []string{"varchar", "INTEGER", "numeric", " text"} {
		_, err := ParseColumnType(tag)
		require.Error(t, err, "tag %q must be rejected", tag)
		assert.True(t, errs.IsDataSer(err))
		assert.Contains(t, err.Error(), tag)
	}
}

func TestParseColumnTypes(t *testing.T) {
	types, err := parseColumnTypes([]string{"integer", "text", ""})
	require.NoError(t, err)
	assert.Equal(t, []ColumnType{TypeInteger, TypeText, TypeNull}, types)

	_, err = parseColumnTypes([]string{"integer", "decimal"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decimal")
}

func TestColumnTypeString(t *testing.T) {
	assert.Equal(t, "integer", TypeInteger.String())
	assert.Equal(t, "real", TypeReal.String())
	assert.Equal(t, "text", TypeText.String())
	assert.Equal(t, "blob", TypeBlob.String())
	assert.Equal(t, "null", TypeNull.String())
}
