package etl

import (
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/BartekS5/tourmap/pkg/models"
)

// Transformer assembles normalized documents from partner records.
// It holds no mutable state and is safe for concurrent use.
type Transformer struct {
	Schema *models.TargetSchema
	logger *zap.Logger
}

type Option func(*Transformer)

func WithLogger(l *zap.Logger) Option {
	return func(t *Transformer) {
		if l != nil {
			t.logger = l
		}
	}
}

func NewTransformer(schema *models.TargetSchema, opts ...Option) *Transformer {
	if schema == nil {
		schema = models.DefaultTargetSchema()
	}
	t := &Transformer{Schema: schema, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// binding pairs an enabled target field with its mapping.
type binding struct {
	def     models.TargetFieldDefinition
	mapping models.FieldMapping
	path    Path
}

func (b binding) repeats() bool {
	return b.mapping.SourceType == models.SourceAPI && b.path.HasRepeat()
}

// Transform maps one source record into the target schema. Object sections
// become maps, array sections become lists of records, and sections that end
// up empty are left out. A nil set maps nothing.
func (t *Transformer) Transform(doc gjson.Result, set *models.MappingSet) map[string]any {
	out := make(map[string]any, len(t.Schema.Sections))
	for _, sec := range t.Schema.Sections {
		bindings := t.bindings(sec, set)
		if sec.IsArray() {
			if records := t.assembleArray(doc, sec, bindings); len(records) > 0 {
				out[sec.Name] = records
			}
			continue
		}
		if obj := t.assembleObject(doc, bindings); len(obj) > 0 {
			out[sec.Name] = obj
		}
	}
	return out
}

// bindings lists the enabled, mapped fields of sec in declared order.
func (t *Transformer) bindings(sec models.SectionDefinition, set *models.MappingSet) []binding {
	var out []binding
	for _, f := range sec.Fields {
		id := models.FieldID(sec.Name, f.Key)
		if !set.IsEnabled(id) {
			continue
		}
		m, ok := set.Mapping(id)
		if !ok {
			continue
		}
		b := binding{def: f, mapping: m}
		if m.SourceType == models.SourceAPI {
			b.path = ParsePath(m.SourceValue)
		}
		out = append(out, b)
	}
	return out
}

func (t *Transformer) assembleObject(doc gjson.Result, bindings []binding) map[string]any {
	obj := make(map[string]any)
	for _, b := range bindings {
		if v, ok := t.resolve(doc, itemContext{}, b); ok {
			obj[b.def.Key] = v
		}
	}
	return obj
}

func (t *Transformer) assembleArray(doc gjson.Result, sec models.SectionDefinition, bindings []binding) []map[string]any {
	anchor := anchorPath(sec, bindings)
	if anchor.IsEmpty() {
		t.logger.Debug("no anchor array for section, using top-level fields only",
			zap.String("section", sec.Name))
		rec := make(map[string]any)
		for _, b := range bindings {
			if b.repeats() {
				continue
			}
			if v, ok := t.resolve(doc, itemContext{}, b); ok {
				rec[b.def.Key] = v
			}
		}
		if len(rec) == 0 {
			return nil
		}
		return []map[string]any{rec}
	}

	items := flattenPath(doc, anchor)
	t.logger.Debug("flattened anchor array",
		zap.String("section", sec.Name),
		zap.String("anchor", anchor.String()),
		zap.Int("items", len(items)))

	var records []map[string]any
	for _, item := range items {
		ctx := itemContext{item: item, anchor: anchor, ok: true}
		rec := make(map[string]any)
		for _, b := range bindings {
			if v, ok := t.resolve(doc, ctx, b); ok {
				rec[b.def.Key] = v
			}
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records
}

// anchorPath picks the array driving record generation: the first priority
// field with a repeating path, else the first repeating field in declared order.
func anchorPath(sec models.SectionDefinition, bindings []binding) Path {
	for _, key := range sec.AnchorPriority {
		for _, b := range bindings {
			if b.def.Key == key && b.repeats() {
				return b.path.DeepestArray()
			}
		}
	}
	for _, b := range bindings {
		if b.repeats() {
			return b.path.DeepestArray()
		}
	}
	return Path{}
}

// itemContext is one flattened anchor item; ok is false outside array sections.
type itemContext struct {
	item   gjson.Result
	anchor Path
	ok     bool
}

// lookup reads repeating paths off the item and everything else off the document.
func (c itemContext) lookup(doc gjson.Result, p Path) (any, bool) {
	r, ok := c.result(doc, p)
	if !ok {
		return nil, false
	}
	return r.Value(), true
}

func (c itemContext) result(doc gjson.Result, p Path) (gjson.Result, bool) {
	if !c.ok || !p.HasRepeat() {
		return GetPath(doc, p)
	}
	rel := p.RelativeTo(c.anchor)
	if rel.IsEmpty() {
		return c.item, !isNull(c.item)
	}
	return GetPath(c.item, rel)
}

func (t *Transformer) resolve(doc gjson.Result, ctx itemContext, b binding) (any, bool) {
	m := b.mapping
	if m.SourceType == models.SourceFixed {
		return m.SourceValue, true
	}
	if tpl, ok := m.StringTransform.(models.TemplateTransform); ok {
		return InterpolateTemplate(tpl.Pattern, func(path string) (any, bool) {
			return ctx.lookup(doc, ParsePath(path))
		}), true
	}
	raw, ok := ctx.lookup(doc, b.path)
	return ApplyTransforms(raw, ok, m, b.def.Type)
}
