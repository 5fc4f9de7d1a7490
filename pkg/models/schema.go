package models

import "strings"

// Declared target field types.
const (
	TypeString  = "string"
	TypeInt     = "int"
	TypeFloat   = "float"
	TypeDate    = "date"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// SectionKind tells whether a section produces one object or a list of records.
type SectionKind string

const (
	SectionObject SectionKind = "object"
	SectionArray  SectionKind = "array"
)

// Option is one value of a closed enum.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// LookupSpec describes how the host resolves a value against an external
// entity. The engine only carries it.
type LookupSpec struct {
	Entity      string   `json:"entity"`
	MatchFields []string `json:"match_fields"`
	ReturnField string   `json:"return_field"`
}

// TargetFieldDefinition describes one field of the internal schema.
type TargetFieldDefinition struct {
	Section        string      `json:"section"`
	Key            string      `json:"key"`
	Label          string      `json:"label,omitempty"`
	Type           string      `json:"type"`
	Required       bool        `json:"required"`
	Options        []Option    `json:"options,omitempty"`
	Lookup         *LookupSpec `json:"lookup,omitempty"`
	TargetSubtable string      `json:"target_subtable,omitempty"`
}

// ID returns the "section.key" identifier.
func (f TargetFieldDefinition) ID() string { return FieldID(f.Section, f.Key) }

// IsArrayType reports array and array<T> declarations.
func (f TargetFieldDefinition) IsArrayType() bool {
	return f.Type == TypeArray || strings.HasPrefix(f.Type, TypeArray+"<")
}

// SectionDefinition groups target fields. AnchorPriority lists the field keys
// consulted first when picking the array that drives record generation.
type SectionDefinition struct {
	Name           string                  `json:"name"`
	Label          string                  `json:"label,omitempty"`
	Kind           SectionKind             `json:"kind"`
	AnchorPriority []string                `json:"anchor_priority,omitempty"`
	Fields         []TargetFieldDefinition `json:"fields"`
}

func (s SectionDefinition) IsArray() bool { return s.Kind == SectionArray }

// Field looks up a field by key.
func (s SectionDefinition) Field(key string) (TargetFieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return TargetFieldDefinition{}, false
}

// TargetSchema is the ordered, static catalog of target sections.
type TargetSchema struct {
	Sections []SectionDefinition `json:"sections"`
}

// NewTargetSchema stamps each field with its section name.
func NewTargetSchema(sections ...SectionDefinition) *TargetSchema {
	for i := range sections {
		for j := range sections[i].Fields {
			sections[i].Fields[j].Section = sections[i].Name
		}
	}
	return &TargetSchema{Sections: sections}
}

func (t *TargetSchema) Section(name string) (SectionDefinition, bool) {
	for _, s := range t.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return SectionDefinition{}, false
}

func (t *TargetSchema) Field(section, key string) (TargetFieldDefinition, bool) {
	s, ok := t.Section(section)
	if !ok {
		return TargetFieldDefinition{}, false
	}
	return s.Field(key)
}

func (t *TargetSchema) IsArraySection(name string) bool {
	s, ok := t.Section(name)
	return ok && s.IsArray()
}

// AllFields returns every field in declared order.
func (t *TargetSchema) AllFields() []TargetFieldDefinition {
	var out []TargetFieldDefinition
	for _, s := range t.Sections {
		out = append(out, s.Fields...)
	}
	return out
}

// Section names of the default travel schema.
const (
	SectionTour      = "tour"
	SectionDeparture = "departure"
	SectionItinerary = "itinerary"
	SectionPromotion = "promotion"
)

// DefaultTargetSchema is the internal tour schema partner payloads map into.
func DefaultTargetSchema() *TargetSchema {
	countryLookup := &LookupSpec{Entity: "countries", MatchFields: []string{"name_th", "name_en", "iso_code"}, ReturnField: "id"}
	airlineLookup := &LookupSpec{Entity: "airlines", MatchFields: []string{"code", "name"}, ReturnField: "id"}

	return NewTargetSchema(
		SectionDefinition{
			Name:  SectionTour,
			Label: "Tour",
			Kind:  SectionObject,
			Fields: []TargetFieldDefinition{
				{Key: "code", Label: "Tour code", Type: TypeString, Required: true},
				{Key: "title", Label: "Title", Type: TypeString, Required: true},
				{Key: "description", Type: TypeString},
				{Key: "highlights", Type: TypeString},
				{Key: "country", Type: TypeString, Lookup: countryLookup},
				{Key: "cities", Type: "array<string>"},
				{Key: "airline", Type: TypeString, Lookup: airlineLookup},
				{Key: "duration_days", Type: TypeInt},
				{Key: "duration_nights", Type: TypeInt},
				{Key: "hotel_star", Type: TypeInt},
				{Key: "meal_count", Type: TypeInt},
				{Key: "cover_image", Type: TypeString},
				{Key: "pdf_url", Type: TypeString},
				{Key: "tags", Type: "array<string>"},
				{Key: "is_published", Type: TypeBoolean},
			},
		},
		SectionDefinition{
			Name:           SectionDeparture,
			Label:          "Travel periods",
			Kind:           SectionArray,
			AnchorPriority: []string{"start_date", "end_date", "price_adult"},
			Fields: []TargetFieldDefinition{
				{Key: "start_date", Type: TypeDate, Required: true, TargetSubtable: "tour_periods"},
				{Key: "end_date", Type: TypeDate, TargetSubtable: "tour_periods"},
				{Key: "price_adult", Type: TypeFloat, Required: true, TargetSubtable: "tour_offers"},
				{Key: "price_child", Type: TypeFloat, TargetSubtable: "tour_offers"},
				{Key: "price_child_nobed", Type: TypeFloat, TargetSubtable: "tour_offers"},
				{Key: "price_infant", Type: TypeFloat, TargetSubtable: "tour_offers"},
				{Key: "price_single", Type: TypeFloat, TargetSubtable: "tour_offers"},
				{Key: "deposit", Type: TypeFloat, TargetSubtable: "tour_offers"},
				{Key: "seats_total", Type: TypeInt, TargetSubtable: "tour_periods"},
				{Key: "seats_available", Type: TypeInt, TargetSubtable: "tour_periods"},
				{Key: "status", Type: TypeString, TargetSubtable: "tour_periods", Options: []Option{
					{Value: "open", Label: "Open"},
					{Value: "full", Label: "Full"},
					{Value: "closed", Label: "Closed"},
					{Value: "cancelled", Label: "Cancelled"},
				}},
				{Key: "guarantee", Type: TypeBoolean, TargetSubtable: "tour_periods"},
			},
		},
		SectionDefinition{
			Name:           SectionItinerary,
			Label:          "Daily itinerary",
			Kind:           SectionArray,
			AnchorPriority: []string{"day_number", "title", "description"},
			Fields: []TargetFieldDefinition{
				{Key: "day_number", Type: TypeInt, Required: true, TargetSubtable: "tour_itineraries"},
				{Key: "title", Type: TypeString, Required: true, TargetSubtable: "tour_itineraries"},
				{Key: "description", Type: TypeString, TargetSubtable: "tour_itineraries"},
				{Key: "meals", Type: TypeString, TargetSubtable: "tour_itineraries"},
				{Key: "hotel", Type: TypeString, TargetSubtable: "tour_itineraries"},
				{Key: "places", Type: "array<string>", TargetSubtable: "tour_itineraries"},
			},
		},
		SectionDefinition{
			Name:  SectionPromotion,
			Label: "Promotion",
			Kind:  SectionObject,
			Fields: []TargetFieldDefinition{
				{Key: "label", Type: TypeString},
				{Key: "discount_amount", Type: TypeFloat},
				{Key: "discount_percent", Type: TypeFloat},
				{Key: "start_date", Type: TypeDate},
				{Key: "end_date", Type: TypeDate},
				{Key: "is_flash_sale", Type: TypeBoolean},
			},
		},
	)
}
