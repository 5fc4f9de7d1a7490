package etl

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/BartekS5/tourmap/pkg/models"
	"github.com/BartekS5/tourmap/pkg/utils"
)

var templateToken = regexp.MustCompile(`\{([^{}]+)\}`)

// ApplyTransforms runs the value map and then the string transform of m over
// a raw extracted value. defined is false for a value missing from the source.
// Template transforms are not applied here; see InterpolateTemplate.
func ApplyTransforms(raw any, defined bool, m models.FieldMapping, fieldType string) (any, bool) {
	val, ok := raw, defined
	if len(m.ValueMap) > 0 {
		val, ok = applyValueMap(val, ok, m.ValueMap, fieldType)
	}
	if !ok {
		return nil, false
	}
	return applyStringTransform(val, m.StringTransform), true
}

// applyValueMap returns the first rule's To whose From matches case-insensitively.
// Blank values match the EmptySentinel rule. Without a match the input passes through.
func applyValueMap(raw any, defined bool, rules []models.ValueMapRule, fieldType string) (any, bool) {
	key := models.EmptySentinel
	if !utils.IsBlank(raw, defined) {
		key = utils.Stringify(raw)
	}
	fold := cases.Fold()
	key = fold.String(key)
	for _, r := range rules {
		if fold.String(r.From) != key {
			continue
		}
		if fieldType == models.TypeBoolean {
			return utils.ParseBool(r.To), true
		}
		return r.To, true
	}
	return raw, defined
}

func applyStringTransform(val any, t models.StringTransform) any {
	switch t := t.(type) {
	case models.SplitTransform:
		s, ok := val.(string)
		if !ok || t.Delimiter == "" {
			return val
		}
		pieces := splitClean(s, t.Delimiter)
		if t.JoinWith != "" {
			return strings.Join(pieces, t.JoinWith)
		}
		return pieces
	case models.JoinTransform:
		switch arr := val.(type) {
		case []string:
			return strings.Join(arr, t.Separator)
		case []any:
			parts := make([]string, len(arr))
			for i, v := range arr {
				parts[i] = utils.Stringify(v)
			}
			return strings.Join(parts, t.Separator)
		}
		return val
	case models.ReplaceTransform:
		s, ok := val.(string)
		if !ok || t.From == "" {
			return val
		}
		return strings.ReplaceAll(s, t.From, t.To)
	default:
		return val
	}
}

func splitClean(s, delimiter string) []string {
	pieces := []string{}
	for _, p := range strings.Split(s, delimiter) {
		if p = strings.TrimSpace(p); p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// InterpolateTemplate replaces every {path} token with the value lookup finds
// for it. Missing and null values become "". The result is trimmed.
func InterpolateTemplate(pattern string, lookup func(path string) (any, bool)) string {
	out := templateToken.ReplaceAllStringFunc(pattern, func(tok string) string {
		v, ok := lookup(strings.TrimSpace(tok[1 : len(tok)-1]))
		if !ok || v == nil {
			return ""
		}
		return utils.Stringify(v)
	})
	return strings.TrimSpace(out)
}
