package etl

import (
	"fmt"
	"strings"

	"github.com/BartekS5/tourmap/pkg/models"
	"github.com/BartekS5/tourmap/pkg/utils"
)

// Validator is a local stand-in for the server-side dry-run validator.
// It checks required fields, declared types and enum options of a
// transformed document without coercing anything.
type Validator struct {
	Schema *models.TargetSchema
}

func NewValidator(schema *models.TargetSchema) *Validator {
	if schema == nil {
		schema = models.DefaultTargetSchema()
	}
	return &Validator{Schema: schema}
}

// NewValidationRequest builds the dry-run request from what the engine used.
func NewValidationRequest(sample any, transformed map[string]any, set *models.MappingSet) models.ValidationRequest {
	return models.ValidationRequest{
		SampleData:      sample,
		TransformedData: transformed,
		EnabledFields:   set.EnabledFields(),
		Mappings:        set.Records(),
	}
}

func (v *Validator) Validate(req models.ValidationRequest) models.ValidationResponse {
	enabled := make(map[string]bool, len(req.EnabledFields))
	for _, id := range req.EnabledFields {
		enabled[id] = true
	}

	resp := models.ValidationResponse{
		Validations: []models.SectionValidation{},
		Errors:      []models.ValidationIssue{},
		Warnings:    []models.ValidationIssue{},
	}

	for _, sec := range v.Schema.Sections {
		var fields []models.TargetFieldDefinition
		for _, f := range sec.Fields {
			if enabled[f.ID()] {
				fields = append(fields, f)
			}
		}
		if len(fields) == 0 {
			resp.Validations = append(resp.Validations, models.SectionValidation{
				Section: sec.Name,
				Status:  models.StatusSkipped,
				Message: "no enabled fields",
			})
			continue
		}

		errs, warns := len(resp.Errors), len(resp.Warnings)
		sv := models.SectionValidation{Section: sec.Name}
		data := req.TransformedData[sec.Name]

		if sec.IsArray() {
			records := asRecords(data)
			count := len(records)
			sv.Count = &count
			for _, r := range records {
				sv.Items = append(sv.Items, r)
			}
			if count == 0 && hasRequired(fields) {
				resp.Errors = append(resp.Errors, issue(sec.Name, "no_records", "no %s records were produced", sec.Name))
			}
			for i, r := range records {
				v.checkRecord(&resp, sec.Name, fmt.Sprintf("%s[%d]", sec.Name, i), fields, r)
			}
			switch sec.Name {
			case models.SectionDeparture:
				resp.Summary.Departures = count
			case models.SectionItinerary:
				resp.Summary.Itineraries = count
			}
		} else {
			obj, _ := data.(map[string]any)
			v.checkRecord(&resp, sec.Name, sec.Name, fields, obj)
			if sec.Name == models.SectionTour && len(obj) > 0 {
				resp.Summary.Tours = 1
			}
		}

		switch {
		case len(resp.Errors) > errs:
			sv.Status = models.StatusError
			sv.Message = fmt.Sprintf("%d error(s)", len(resp.Errors)-errs)
		case len(resp.Warnings) > warns:
			sv.Status = models.StatusWarning
			sv.Message = fmt.Sprintf("%d warning(s)", len(resp.Warnings)-warns)
		default:
			sv.Status = models.StatusOK
		}
		resp.Validations = append(resp.Validations, sv)
	}

	resp.Summary.Errors = len(resp.Errors)
	resp.Summary.Warnings = len(resp.Warnings)
	resp.Success = len(resp.Errors) == 0
	if resp.Success {
		resp.Message = "validation passed"
	} else {
		resp.Message = fmt.Sprintf("validation failed with %d error(s)", len(resp.Errors))
	}
	return resp
}

func (v *Validator) checkRecord(resp *models.ValidationResponse, section, label string, fields []models.TargetFieldDefinition, rec map[string]any) {
	for _, f := range fields {
		val, ok := rec[f.Key]
		if !ok || val == nil {
			if f.Required {
				resp.Errors = append(resp.Errors, issue(section, "missing_required", "%s.%s is required", label, f.Key))
			}
			continue
		}
		if !matchesType(f, val) {
			resp.Warnings = append(resp.Warnings, issue(section, "type_mismatch",
				"%s.%s: %q does not look like %s", label, f.Key, utils.Stringify(val), f.Type))
			continue
		}
		if len(f.Options) > 0 && !inOptions(f.Options, val) {
			resp.Warnings = append(resp.Warnings, issue(section, "invalid_option",
				"%s.%s: %q is not one of the allowed values", label, f.Key, utils.Stringify(val)))
		}
	}
}

func matchesType(f models.TargetFieldDefinition, val any) bool {
	switch {
	case f.Type == models.TypeInt:
		return utils.LooksInteger(val)
	case f.Type == models.TypeFloat:
		return utils.LooksNumeric(val)
	case f.Type == models.TypeDate:
		_, err := utils.ConvertDateTime(val)
		return err == nil
	case f.Type == models.TypeBoolean:
		_, ok := val.(bool)
		return ok
	case f.IsArrayType():
		switch val.(type) {
		case []any, []string:
			return true
		}
		return false
	case f.Type == models.TypeObject:
		_, ok := val.(map[string]any)
		return ok
	default:
		switch val.(type) {
		case string, float64, bool:
			return true
		}
		return false
	}
}

func inOptions(opts []models.Option, val any) bool {
	s := utils.Stringify(val)
	for _, o := range opts {
		if strings.EqualFold(o.Value, s) {
			return true
		}
	}
	return false
}

func hasRequired(fields []models.TargetFieldDefinition) bool {
	for _, f := range fields {
		if f.Required {
			return true
		}
	}
	return false
}

func asRecords(data any) []map[string]any {
	switch v := data.(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func issue(section, typ, format string, args ...any) models.ValidationIssue {
	return models.ValidationIssue{Section: section, Type: typ, Message: fmt.Sprintf(format, args...)}
}
