package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrUnknownTransform  = errors.New("unknown string transform type")
	ErrUnknownSourceType = errors.New("unknown source type")
	ErrMappingNotFound   = errors.New("mapping not found")
)

// SourceType says where a mapped value comes from.
type SourceType string

const (
	SourceAPI   SourceType = "api"
	SourceFixed SourceType = "fixed"
)

// EmptySentinel stands for a null, missing or empty source value in value maps.
const EmptySentinel = "__EMPTY__"

// ValueMapRule rewrites one source value into a target value.
type ValueMapRule struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// FieldMapping binds one target field to its source.
// SourceValue is a bracket path for SourceAPI and a literal for SourceFixed.
type FieldMapping struct {
	SourceType      SourceType
	SourceValue     string
	LookupBy        string
	ValueMap        []ValueMapRule
	StringTransform StringTransform
}

// APIMapping is a shorthand for an api-sourced mapping without transforms.
func APIMapping(path string) FieldMapping {
	return FieldMapping{SourceType: SourceAPI, SourceValue: path}
}

// FixedMapping is a shorthand for a literal value.
func FixedMapping(value string) FieldMapping {
	return FieldMapping{SourceType: SourceFixed, SourceValue: value}
}

// IsTemplate reports whether the mapping interpolates a template.
func (m FieldMapping) IsTemplate() bool {
	_, ok := m.StringTransform.(TemplateTransform)
	return ok
}

// FieldID builds the "section.key" identifier used throughout a MappingSet.
func FieldID(section, key string) string {
	return section + "." + key
}

// SplitFieldID is the inverse of FieldID. Keys may not contain dots, sections may.
func SplitFieldID(id string) (section, key string) {
	i := strings.LastIndex(id, ".")
	if i < 0 {
		return "", id
	}
	return id[:i], id[i+1:]
}

// MappingSet holds the user-authored bindings and the enabled target fields.
// A mapping only exists for an enabled field. A nil *MappingSet reads as
// empty and the zero value is ready to use.
type MappingSet struct {
	mappings map[string]FieldMapping
	enabled  map[string]struct{}
}

func NewMappingSet() *MappingSet {
	return &MappingSet{
		mappings: make(map[string]FieldMapping),
		enabled:  make(map[string]struct{}),
	}
}

func (s *MappingSet) init() {
	if s.mappings == nil {
		s.mappings = make(map[string]FieldMapping)
	}
	if s.enabled == nil {
		s.enabled = make(map[string]struct{})
	}
}

// Mapping returns the binding for a field id.
func (s *MappingSet) Mapping(id string) (FieldMapping, bool) {
	if s == nil {
		return FieldMapping{}, false
	}
	m, ok := s.mappings[id]
	return m, ok
}

// SetMapping binds a field, enabling it if needed.
func (s *MappingSet) SetMapping(id string, m FieldMapping) {
	s.init()
	s.enabled[id] = struct{}{}
	s.mappings[id] = m
}

func (s *MappingSet) RemoveMapping(id string) {
	if s == nil {
		return
	}
	delete(s.mappings, id)
}

func (s *MappingSet) IsEnabled(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.enabled[id]
	return ok
}

// Enable turns a field on. It never brings back a mapping removed by Disable.
func (s *MappingSet) Enable(id string) {
	s.init()
	s.enabled[id] = struct{}{}
}

// Disable turns a field off and drops its mapping. Calling it twice is a no-op.
func (s *MappingSet) Disable(id string) {
	if s == nil {
		return
	}
	delete(s.enabled, id)
	delete(s.mappings, id)
}

// EnableSection enables every field the schema declares for section.
func (s *MappingSet) EnableSection(schema *TargetSchema, section string) {
	sec, ok := schema.Section(section)
	if !ok {
		return
	}
	for _, f := range sec.Fields {
		s.Enable(FieldID(section, f.Key))
	}
}

// DisableSection disables every field of section, including ids the schema
// does not know about but that carry the section prefix.
func (s *MappingSet) DisableSection(schema *TargetSchema, section string) {
	if s == nil {
		return
	}
	if sec, ok := schema.Section(section); ok {
		for _, f := range sec.Fields {
			s.Disable(FieldID(section, f.Key))
		}
	}
	prefix := section + "."
	for id := range s.enabled {
		if strings.HasPrefix(id, prefix) {
			s.Disable(id)
		}
	}
	for id := range s.mappings {
		if strings.HasPrefix(id, prefix) {
			s.Disable(id)
		}
	}
}

// EnabledFields returns the enabled ids in sorted order.
func (s *MappingSet) EnabledFields() []string {
	if s == nil {
		return []string{}
	}
	ids := make([]string, 0, len(s.enabled))
	for id := range s.enabled {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MappedFields returns the ids that carry a mapping, sorted.
func (s *MappingSet) MappedFields() []string {
	if s == nil {
		return []string{}
	}
	ids := make([]string, 0, len(s.mappings))
	for id := range s.mappings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len is the number of mapped fields.
func (s *MappingSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.mappings)
}

// Clone returns an independent copy.
func (s *MappingSet) Clone() *MappingSet {
	c := NewMappingSet()
	if s == nil {
		return c
	}
	for id := range s.enabled {
		c.enabled[id] = struct{}{}
	}
	for id, m := range s.mappings {
		m.ValueMap = append([]ValueMapRule(nil), m.ValueMap...)
		c.mappings[id] = m
	}
	return c
}

// MappingRecord is the persisted shape of one mapped target field.
type MappingRecord struct {
	Section         string         `json:"section" bson:"section"`
	OurField        string         `json:"our_field" bson:"our_field"`
	SourceType      SourceType     `json:"source_type" bson:"source_type"`
	APIField        *string        `json:"api_field" bson:"api_field"`
	FixedValue      *string        `json:"fixed_value" bson:"fixed_value"`
	LookupBy        *string        `json:"lookup_by" bson:"lookup_by"`
	ValueMap        []ValueMapRule `json:"value_map" bson:"value_map"`
	StringTransform *TransformSpec `json:"string_transform" bson:"string_transform"`
}

// Records projects the set into its persisted form, sorted by field id.
func (s *MappingSet) Records() []MappingRecord {
	ids := s.MappedFields()
	out := make([]MappingRecord, 0, len(ids))
	for _, id := range ids {
		m := s.mappings[id]
		section, key := SplitFieldID(id)
		rec := MappingRecord{
			Section:         section,
			OurField:        key,
			SourceType:      m.SourceType,
			LookupBy:        optional(m.LookupBy),
			StringTransform: EncodeTransform(m.StringTransform),
		}
		if len(m.ValueMap) > 0 {
			rec.ValueMap = append([]ValueMapRule(nil), m.ValueMap...)
		}
		v := m.SourceValue
		if m.SourceType == SourceFixed {
			rec.FixedValue = &v
		} else {
			rec.APIField = &v
		}
		out = append(out, rec)
	}
	return out
}

// MappingSetFromRecords rebuilds a MappingSet. The presence of api_field decides
// the source type. When enabled is nil every recorded field counts as enabled;
// otherwise records for fields missing from enabled are dropped.
func MappingSetFromRecords(records []MappingRecord, enabled []string) (*MappingSet, error) {
	s := NewMappingSet()
	for _, id := range enabled {
		s.Enable(id)
	}
	for _, rec := range records {
		id := FieldID(rec.Section, rec.OurField)
		if enabled != nil && !s.IsEnabled(id) {
			continue
		}
		m := FieldMapping{}
		switch {
		case rec.APIField != nil:
			m.SourceType = SourceAPI
			m.SourceValue = *rec.APIField
		case rec.FixedValue != nil:
			m.SourceType = SourceFixed
			m.SourceValue = *rec.FixedValue
		case rec.SourceType == SourceAPI || rec.SourceType == SourceFixed:
			m.SourceType = rec.SourceType
		default:
			return nil, fmt.Errorf("field %s: %w %q", id, ErrUnknownSourceType, rec.SourceType)
		}
		if rec.LookupBy != nil {
			m.LookupBy = *rec.LookupBy
		}
		m.ValueMap = append([]ValueMapRule(nil), rec.ValueMap...)
		t, err := rec.StringTransform.Decode()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", id, err)
		}
		m.StringTransform = t
		s.SetMapping(id, m)
	}
	return s, nil
}

// MappingDocument is the unit a host saves and loads for one wholesaler.
type MappingDocument struct {
	Version       int             `json:"version" bson:"version"`
	WholesalerID  string          `json:"wholesaler_id" bson:"wholesaler_id"`
	Mappings      []MappingRecord `json:"mappings" bson:"mappings"`
	EnabledFields []string        `json:"enabled_fields" bson:"enabled_fields"`
	UpdatedAt     time.Time       `json:"updated_at" bson:"updated_at"`
}

// NewMappingDocument snapshots set for persistence.
func NewMappingDocument(wholesalerID string, set *MappingSet) *MappingDocument {
	return &MappingDocument{
		Version:       1,
		WholesalerID:  wholesalerID,
		Mappings:      set.Records(),
		EnabledFields: set.EnabledFields(),
		UpdatedAt:     time.Now().UTC(),
	}
}

// MappingSet decodes the document into a MappingSet.
func (d *MappingDocument) MappingSet() (*MappingSet, error) {
	return MappingSetFromRecords(d.Mappings, d.EnabledFields)
}

// LoadMapping parses a mapping document from JSON.
func LoadMapping(data []byte) (*MappingDocument, error) {
	var d MappingDocument
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if _, err := d.MappingSet(); err != nil {
		return nil, err
	}
	return &d, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
