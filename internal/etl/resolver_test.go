package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func record(t *testing.T, s string) gjson.Result {
	t.Helper()
	require.True(t, gjson.Valid(s), "invalid JSON: %s", s)
	return gjson.Parse(s)
}

func values(items []gjson.Result) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item.Value()
	}
	return out
}

func TestGetScalar(t *testing.T) {
	doc := record(t, `{
		"ProductName": "Japan Tour",
		"meta": {"country": {"name": "Japan"}, "empty": null},
		"periods": [{"start": "2026-01-10", "offers": [{"price": 29900}]}, {"start": "2026-02-01"}],
		"none": []
	}`)

	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{"ProductName", "Japan Tour", true},
		{"meta.country.name", "Japan", true},
		{"meta.empty", nil, true},
		{"periods[].start", "2026-01-10", true},
		{"periods[].offers[].price", 29900.0, true},
		{"missing", nil, false},
		{"meta.missing.deep", nil, false},
		{"meta.empty.deep", nil, false},
		{"ProductName.x", nil, false},
		{"none[].x", nil, false},
		{"meta[].country", nil, false},
		{"periods.0.start", nil, false},
		{"periods.#", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := GetScalar(doc, tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetScalarLiteralKeys(t *testing.T) {
	doc := record(t, `{
		"price#adult": 5,
		"Tour*": {"name?": "wild"},
		"a|b": true,
		"price": 9
	}`)

	tests := []struct {
		path string
		want any
	}{
		{"price#adult", 5.0},
		{"Tour*.name?", "wild"},
		{"a|b", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := GetScalar(doc, tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := GetScalar(doc, "pri*")
	assert.False(t, ok, "wildcards are literal key characters")
}

func TestGetPathKeepsRaw(t *testing.T) {
	doc := record(t, `{"periods": [{"start": "2026-01-10",  "price": 1}]}`)

	r, ok := GetPath(doc, ParsePath("periods[]"))
	require.True(t, ok)
	assert.Equal(t, `{"start": "2026-01-10",  "price": 1}`, r.Raw)
}

func TestFlattenArrayPathOrder(t *testing.T) {
	doc := record(t, `{"periods": [
		{"tour_period": [{"a": 1}, {"a": 2}]},
		{"tour_period": [{"a": 3}]}
	]}`)

	items := FlattenArrayPath(doc, "periods[].tour_period[]")
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, float64(i+1), item.Get("a").Float())
	}
}

func TestFlattenArrayPath(t *testing.T) {
	doc := record(t, `{
		"data": {"periods": [
			{"id": "p1", "days": [{"d": 1}, {"d": 2}]},
			{"id": "p2"},
			{"id": "p3", "days": "not-a-list"},
			{"id": "p4", "days": [{"d": 3}]},
			{"id": "p5", "days": null}
		]},
		"single": {"value": 7},
		"tags": ["a", "b"]
	}`)

	t.Run("skips elements lacking the next array", func(t *testing.T) {
		items := FlattenArrayPath(doc, "data.periods[].days[]")
		require.Len(t, items, 4)
		assert.Equal(t, 3.0, items[3].Get("d").Value())
	})

	t.Run("non-list last step is a single item", func(t *testing.T) {
		items := FlattenArrayPath(doc, "data.periods[].days[]")
		assert.Equal(t, "not-a-list", items[2].String())
	})

	t.Run("object instead of array at last step", func(t *testing.T) {
		assert.Equal(t, []any{map[string]any{"value": 7.0}}, values(FlattenArrayPath(doc, "single[]")))
	})

	t.Run("primitive array", func(t *testing.T) {
		assert.Equal(t, []any{"a", "b"}, values(FlattenArrayPath(doc, "tags[]")))
	})

	t.Run("missing", func(t *testing.T) {
		assert.Empty(t, FlattenArrayPath(doc, "nothing[]"))
		assert.Empty(t, FlattenArrayPath(doc, ""))
		assert.Empty(t, FlattenArrayPath(gjson.Result{}, "data.periods[]"))
	})
}
