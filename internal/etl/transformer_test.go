package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BartekS5/tourmap/pkg/models"
)

func newSet(bindings map[string]models.FieldMapping) *models.MappingSet {
	s := models.NewMappingSet()
	for id, m := range bindings {
		s.SetMapping(id, m)
	}
	return s
}

func TestTransformScenarioA(t *testing.T) {
	doc := record(t, `{"ProductName":"Japan Tour","departures":[{"DepartDate":"2026-01-10","Price":29900}]}`)
	set := newSet(map[string]models.FieldMapping{
		"tour.title":            models.APIMapping("ProductName"),
		"departure.start_date":  models.APIMapping("departures[].DepartDate"),
		"departure.price_adult": models.APIMapping("departures[].Price"),
	})

	out := NewTransformer(nil, WithLogger(zaptest.NewLogger(t))).Transform(doc, set)
	assert.Equal(t, map[string]any{
		"tour": map[string]any{"title": "Japan Tour"},
		"departure": []map[string]any{
			{"start_date": "2026-01-10", "price_adult": 29900.0},
		},
	}, out)
}

func TestTransformNestedArrays(t *testing.T) {
	doc := record(t, `{
		"code": "JP-001",
		"currency": "THB",
		"periods": [
			{"start": "2026-01-10", "offers": [{"type": "A", "price": 100}, {"type": "B", "price": 90}]},
			{"start": "2026-02-10", "offers": [{"type": "A", "price": 120}]}
		]
	}`)
	set := newSet(map[string]models.FieldMapping{
		"departure.start_date":  models.APIMapping("periods[].start"),
		"departure.price_adult": models.APIMapping("periods[].offers[].price"),
		"departure.status":      models.FixedMapping("open"),
		"departure.deposit":     models.APIMapping("currency"),
	})

	// start_date has priority, so periods[] drives the records and the
	// deeper offers[] path resolves to the first offer of each period.
	out := NewTransformer(nil).Transform(doc, set)
	recs := out[models.SectionDeparture].([]map[string]any)
	require.Len(t, recs, 2)
	assert.Equal(t, 100.0, recs[0]["price_adult"])
	assert.Equal(t, 120.0, recs[1]["price_adult"])

	set.Disable("departure.start_date")
	out = NewTransformer(nil).Transform(doc, set)
	recs = out[models.SectionDeparture].([]map[string]any)
	require.Len(t, recs, 3)
	assert.Equal(t, []any{100.0, 90.0, 120.0}, []any{recs[0]["price_adult"], recs[1]["price_adult"], recs[2]["price_adult"]})
	for _, r := range recs {
		assert.Equal(t, "open", r["status"])
		assert.Equal(t, "THB", r["deposit"])
	}
}

func TestTransformAnchorPriority(t *testing.T) {
	doc := record(t, `{
		"periods": [{"start": "2026-01-10"}, {"start": "2026-02-10"}],
		"offers": [{"price": 1}, {"price": 2}, {"price": 3}]
	}`)

	t.Run("priority field wins over declared order", func(t *testing.T) {
		set := newSet(map[string]models.FieldMapping{
			"departure.price_child": models.APIMapping("offers[].price"),
			"departure.start_date":  models.APIMapping("periods[].start"),
		})
		recs := NewTransformer(nil).Transform(doc, set)[models.SectionDeparture].([]map[string]any)
		require.Len(t, recs, 2)
		assert.Equal(t, "2026-01-10", recs[0]["start_date"])
		assert.Equal(t, "2026-02-10", recs[1]["start_date"])
		// offers[] is not under the anchor, so it is read off each period item
		assert.NotContains(t, recs[0], "price_child")
	})

	t.Run("fallback to first repeating field in declared order", func(t *testing.T) {
		set := newSet(map[string]models.FieldMapping{
			"departure.deposit":     models.APIMapping("periods[].start"),
			"departure.price_child": models.APIMapping("offers[].price"),
		})
		recs := NewTransformer(nil).Transform(doc, set)[models.SectionDeparture].([]map[string]any)
		assert.Len(t, recs, 3)
		assert.Equal(t, 1.0, recs[0]["price_child"])
	})
}

func TestTransformArraySectionWithoutAnchor(t *testing.T) {
	doc := record(t, `{"StartDate": "2026-01-10", "Price": 500}`)
	set := newSet(map[string]models.FieldMapping{
		"departure.start_date":  models.APIMapping("StartDate"),
		"departure.price_adult": models.APIMapping("Price"),
	})
	out := NewTransformer(nil).Transform(doc, set)
	assert.Equal(t, []map[string]any{{"start_date": "2026-01-10", "price_adult": 500.0}}, out[models.SectionDeparture])
}

func TestTransformStripsEmpty(t *testing.T) {
	doc := record(t, `{"periods": [{"start": "2026-01-10"}, {"other": 1}], "Nothing": null}`)
	set := newSet(map[string]models.FieldMapping{
		"departure.start_date": models.APIMapping("periods[].start"),
		"tour.title":           models.APIMapping("Missing"),
		"itinerary.title":      models.APIMapping("days[].title"),
	})

	out := NewTransformer(nil).Transform(doc, set)
	assert.Equal(t, map[string]any{
		"departure": []map[string]any{{"start_date": "2026-01-10"}},
	}, out)

	assert.Empty(t, NewTransformer(nil).Transform(record(t, `{}`), models.NewMappingSet()))
	assert.Empty(t, NewTransformer(nil).Transform(record(t, `{"Code": "A"}`), nil))
}

func TestTransformTemplates(t *testing.T) {
	doc := record(t, `{
		"ProductName": "Japan Tour",
		"days": [{"no": 1, "title": "Tokyo"}, {"no": 2, "title": "Osaka"}]
	}`)
	set := newSet(map[string]models.FieldMapping{
		"tour.title": {
			SourceType:      models.SourceAPI,
			SourceValue:     "ProductName",
			StringTransform: models.TemplateTransform{Pattern: "{ProductName} - {Highlight}"},
		},
		"itinerary.day_number": models.APIMapping("days[].no"),
		"itinerary.title": {
			SourceType:      models.SourceAPI,
			SourceValue:     "days[].title",
			StringTransform: models.TemplateTransform{Pattern: "Day {days[].no}: {days[].title} ({ProductName})"},
		},
	})

	out := NewTransformer(nil).Transform(doc, set)
	assert.Equal(t, "Japan Tour -", out["tour"].(map[string]any)["title"])
	days := out[models.SectionItinerary].([]map[string]any)
	require.Len(t, days, 2)
	assert.Equal(t, "Day 2: Osaka (Japan Tour)", days[1]["title"])
}

func TestTransformPrimitiveAnchor(t *testing.T) {
	doc := record(t, `{"dates": ["2026-01-10", "2026-01-17"], "price": 100}`)
	set := newSet(map[string]models.FieldMapping{
		"departure.start_date":  models.APIMapping("dates[]"),
		"departure.price_adult": models.APIMapping("price"),
	})
	recs := NewTransformer(nil).Transform(doc, set)[models.SectionDeparture].([]map[string]any)
	assert.Equal(t, []map[string]any{
		{"start_date": "2026-01-10", "price_adult": 100.0},
		{"start_date": "2026-01-17", "price_adult": 100.0},
	}, recs)
}

func TestTransformOnlyEnabledKeys(t *testing.T) {
	doc := record(t, catalogSample)
	schema := models.DefaultTargetSchema()
	set := models.NewMappingSet()
	for _, sec := range schema.Sections {
		set.EnableSection(schema, sec.Name)
	}
	AutoDetect(set, ExtractCatalog([]byte(catalogSample), ""), schema)
	set.Disable("tour.code")
	set.SetMapping("tour.is_published", models.FixedMapping("true"))
	set.SetMapping("promotion.label", models.FixedMapping("Early bird"))
	set.DisableSection(schema, models.SectionPromotion)

	out := NewTransformer(schema).Transform(doc, set)
	require.NotEmpty(t, out)
	for section, data := range out {
		switch v := data.(type) {
		case map[string]any:
			for key := range v {
				assert.True(t, set.IsEnabled(models.FieldID(section, key)), section+"."+key)
			}
		case []map[string]any:
			for _, rec := range v {
				for key := range rec {
					assert.True(t, set.IsEnabled(models.FieldID(section, key)), section+"."+key)
				}
			}
		default:
			t.Fatalf("unexpected section shape %T", data)
		}
	}
	assert.NotContains(t, out, models.SectionPromotion)
}
