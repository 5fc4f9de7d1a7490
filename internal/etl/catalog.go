package etl

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"

	"github.com/tidwall/gjson"

	"github.com/BartekS5/tourmap/pkg/models"
)

// Inferred source types beyond the declared target types.
const (
	TypeDatetime    = "datetime"
	TypeTime        = "time"
	TypeNull        = "null"
	TypeArrayObject = "array<object>"
)

const maxArraySamples = 3

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	datetimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}`)
	timePattern     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// Catalog is the ordered list of leaf paths found in a sample document.
// Order follows the document's own key order.
type Catalog struct {
	fields []models.SourceFieldDescriptor
	index  map[string]int
}

func newCatalog() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// put keeps the first insertion position and the last written value.
func (c *Catalog) put(path, typ string, sample any) {
	d := models.SourceFieldDescriptor{Path: path, Type: typ, Sample: sample}
	if i, ok := c.index[path]; ok {
		c.fields[i] = d
		return
	}
	c.index[path] = len(c.fields)
	c.fields = append(c.fields, d)
}

func (c *Catalog) Fields() []models.SourceFieldDescriptor { return c.fields }

func (c *Catalog) Len() int { return len(c.fields) }

func (c *Catalog) Get(path string) (models.SourceFieldDescriptor, bool) {
	i, ok := c.index[path]
	if !ok {
		return models.SourceFieldDescriptor{}, false
	}
	return c.fields[i], true
}

func (c *Catalog) Paths() []string {
	out := make([]string, len(c.fields))
	for i, f := range c.fields {
		out[i] = f.Path
	}
	return out
}

// ExtractCatalog introspects a raw JSON document. Arrays of objects are
// walked through their first element only. Invalid JSON yields an empty catalog.
func ExtractCatalog(document []byte, prefix string) *Catalog {
	c := newCatalog()
	if !gjson.ValidBytes(document) {
		return c
	}
	c.walk(gjson.ParseBytes(document), prefix)
	return c
}

// ExtractCatalogValue catalogs an already decoded document. Object keys come
// out in sorted order because the document is re-encoded first.
func ExtractCatalogValue(doc any) *Catalog {
	b, err := json.Marshal(doc)
	if err != nil {
		return newCatalog()
	}
	return ExtractCatalog(b, "")
}

func (c *Catalog) walk(r gjson.Result, prefix string) {
	switch {
	case !r.Exists() || r.Type == gjson.Null:
		return
	case r.IsArray():
		items := r.Array()
		if len(items) == 0 {
			c.put(prefix, models.TypeArray, []any{})
			return
		}
		if items[0].IsObject() {
			c.walk(items[0], prefix+"[]")
			return
		}
		n := min(len(items), maxArraySamples)
		sample := make([]any, n)
		for i := 0; i < n; i++ {
			sample[i] = items[i].Value()
		}
		c.put(prefix, "array<"+runtimeType(items[0])+">", sample)
	case r.IsObject():
		r.ForEach(func(key, value gjson.Result) bool {
			path := key.String()
			if prefix != "" {
				path = prefix + "." + path
			}
			if value.IsArray() {
				if items := value.Array(); len(items) > 0 && items[0].IsObject() {
					c.put(path, TypeArrayObject, fmt.Sprintf("%d items", len(items)))
				}
			}
			c.walk(value, path)
			return true
		})
	default:
		c.put(prefix, scalarType(r), r.Value())
	}
}

// scalarType is runtimeType with strings refined into date, datetime and time.
func scalarType(r gjson.Result) string {
	if r.Type == gjson.String {
		s := r.String()
		switch {
		case datePattern.MatchString(s):
			return models.TypeDate
		case datetimePattern.MatchString(s):
			return TypeDatetime
		case timePattern.MatchString(s):
			return TypeTime
		}
	}
	return runtimeType(r)
}

// runtimeType classifies by JSON type alone. Array elements use it directly.
func runtimeType(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return models.TypeString
	case gjson.Number:
		if n := r.Float(); n == math.Trunc(n) && !math.IsInf(n, 0) {
			return models.TypeInt
		}
		return models.TypeFloat
	case gjson.True, gjson.False:
		return models.TypeBoolean
	case gjson.Null:
		return TypeNull
	default:
		if r.IsArray() {
			return models.TypeArray
		}
		return models.TypeObject
	}
}
