package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"string", "Japan", "Japan"},
		{"integral float", 29900.0, "29900"},
		{"fraction", 12.5, "12.5"},
		{"bool", true, "true"},
		{"array", []interface{}{"a", 1.0, false}, "a,1,false"},
		{"object", map[string]interface{}{"a": 1.0}, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.in))
		})
	}
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool("TRUE"))
	assert.True(t, ParseBool("1"))
	assert.False(t, ParseBool("yes"))
	assert.False(t, ParseBool(""))
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(nil, false))
	assert.True(t, IsBlank(nil, true))
	assert.True(t, IsBlank("", true))
	assert.False(t, IsBlank(" ", true))
	assert.False(t, IsBlank(0.0, true))
}

func TestNumericChecks(t *testing.T) {
	assert.True(t, LooksNumeric("29,900"))
	assert.True(t, LooksNumeric(12.0))
	assert.False(t, LooksNumeric("abc"))
	assert.True(t, LooksInteger("42"))
	assert.False(t, LooksInteger(4.5))
}

func TestConvertDateTime(t *testing.T) {
	d, err := ConvertDateTime("2026-01-10")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Day())

	_, err = ConvertDateTime("10/01/2026")
	assert.Error(t, err)
}

func TestGetIntOffset(t *testing.T) {
	assert.Equal(t, 0, GetIntOffset(nil))
	assert.Equal(t, 20, GetIntOffset("20"))
	assert.Equal(t, 0, GetIntOffset("x"))
}
