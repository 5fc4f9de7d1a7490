package etl

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/BartekS5/tourmap/pkg/models"
)

// AutoDetect proposes api bindings for enabled target fields that have no
// mapping yet. For each field the first catalog path, in catalog order, whose
// last segment equals the field key case-insensitively or contains it (or is
// contained by it) wins. Existing mappings are never touched.
// This is narrower than plain catalog-order matching: array<object> containers
// are never candidates and only enabled fields get bound.
// It returns the ids it bound.
func AutoDetect(set *models.MappingSet, catalog *Catalog, schema *models.TargetSchema) []string {
	fold := cases.Fold()
	var bound []string
	for _, f := range schema.AllFields() {
		id := f.ID()
		if !set.IsEnabled(id) {
			continue
		}
		if _, ok := set.Mapping(id); ok {
			continue
		}
		key := fold.String(f.Key)
		for _, d := range catalog.Fields() {
			if d.Type == TypeArrayObject {
				continue
			}
			if namesMatch(fold.String(lastSegment(d.Path)), key) {
				set.SetMapping(id, models.APIMapping(d.Path))
				bound = append(bound, id)
				break
			}
		}
	}
	return bound
}

func lastSegment(path string) string {
	p := ParsePath(path)
	if p.IsEmpty() {
		return ""
	}
	return p.Segments[len(p.Segments)-1].Name
}

func namesMatch(source, target string) bool {
	if source == "" || target == "" {
		return false
	}
	return source == target || strings.Contains(source, target) || strings.Contains(target, source)
}
