package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BartekS5/tourmap/pkg/models"
)

func TestAutoDetect(t *testing.T) {
	sample := []byte(`{
		"Title": "Japan Tour",
		"TourCode": "JP-001",
		"Desc": "Five days",
		"Highlights": "Snow",
		"periods": [{"start_date": "2026-01-10", "StartDate": "x", "Price": 29900}]
	}`)
	schema := models.DefaultTargetSchema()
	set := models.NewMappingSet()
	for _, id := range []string{"tour.code", "tour.title", "tour.description", "departure.start_date", "departure.price_adult"} {
		set.Enable(id)
	}
	set.SetMapping("tour.title", models.FixedMapping("Manual"))

	bound := AutoDetect(set, ExtractCatalog(sample, ""), schema)
	assert.ElementsMatch(t, []string{"tour.code", "tour.description", "departure.start_date", "departure.price_adult"}, bound)

	expect := map[string]string{
		"tour.code":             "TourCode",
		"tour.description":      "Desc",
		"departure.start_date":  "periods[].start_date",
		"departure.price_adult": "periods[].Price",
	}
	for id, path := range expect {
		m, ok := set.Mapping(id)
		if assert.True(t, ok, id) {
			assert.Equal(t, models.APIMapping(path), m, id)
		}
	}

	title, _ := set.Mapping("tour.title")
	assert.Equal(t, models.SourceFixed, title.SourceType, "existing mappings are kept")

	_, ok := set.Mapping("tour.highlights")
	assert.False(t, ok, "disabled fields are not bound")
}

func TestAutoDetectSkipsArrayContainers(t *testing.T) {
	schema := models.NewTargetSchema(models.SectionDefinition{
		Name: "tour",
		Kind: models.SectionObject,
		Fields: []models.TargetFieldDefinition{
			{Key: "departures", Type: models.TypeArray},
		},
	})
	set := models.NewMappingSet()
	set.Enable("tour.departures")

	bound := AutoDetect(set, ExtractCatalog([]byte(`{"departures": [{"date": "2026-01-10"}]}`), ""), schema)
	assert.Empty(t, bound)
}

func TestNamesMatch(t *testing.T) {
	assert.True(t, namesMatch("price", "price_adult"))
	assert.True(t, namesMatch("tourcode", "code"))
	assert.False(t, namesMatch("startdate", "start_date"))
	assert.False(t, namesMatch("", "code"))
}
