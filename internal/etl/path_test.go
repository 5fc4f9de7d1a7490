package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePath(t *testing.T) {
	p := ParsePath("periods[].tour_period[].price")
	assert.Equal(t, []Segment{
		{Name: "periods", Repeat: true},
		{Name: "tour_period", Repeat: true},
		{Name: "price"},
	}, p.Segments)
	assert.Equal(t, "periods[].tour_period[].price", p.String())
	assert.True(t, p.HasRepeat())

	assert.True(t, ParsePath("").IsEmpty())
	assert.False(t, ParsePath("a.b").HasRepeat())
}

func TestDeepestArrayPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"periods[].tour_period[].price", "periods[].tour_period[]"},
		{"departures[].DepartDate", "departures[]"},
		{"data.items[].meta.days[]", "data.items[].meta.days[]"},
		{"ProductName", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeepestArrayPath(tt.in), tt.in)
	}
}

func TestRelativeField(t *testing.T) {
	tests := []struct {
		name, path, anchor, want string
	}{
		{"under anchor", "periods[].tour_period[].price", "periods[].tour_period[]", "price"},
		{"nested under anchor", "periods[].tour_period[].price.adult", "periods[].tour_period[]", "price.adult"},
		{"shallower path keeps its own array", "periods[].start", "periods[].tour_period[]", "start"},
		{"unrelated array", "days[].title", "periods[]", "title"},
		{"anchor itself is the item", "tags[]", "tags[]", ""},
		{"no repeat", "ProductName", "periods[]", "ProductName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeField(tt.path, tt.anchor))
		})
	}
}

func TestHasPrefixComparesRepeatMarkers(t *testing.T) {
	assert.True(t, ParsePath("a[].b").HasPrefix(ParsePath("a[]")))
	assert.False(t, ParsePath("a.b").HasPrefix(ParsePath("a[]")))
	assert.False(t, ParsePath("a").HasPrefix(ParsePath("a[].b")))
}
