package etl

import "github.com/tidwall/gjson"

// GetScalar resolves path against a raw record and returns the native value.
// Repeat segments descend into the first array element only. The boolean is
// false when any step is missing.
func GetScalar(doc gjson.Result, path string) (any, bool) {
	r, ok := GetPath(doc, ParsePath(path))
	if !ok {
		return nil, false
	}
	return r.Value(), true
}

// GetPath is GetScalar for an already parsed path. It keeps the gjson result
// so callers can keep walking its Raw slice.
func GetPath(doc gjson.Result, p Path) (gjson.Result, bool) {
	if p.IsEmpty() {
		return gjson.Result{}, false
	}
	cur := doc
	for _, seg := range p.Segments {
		next, ok := child(cur, seg.Name)
		if !ok {
			return gjson.Result{}, false
		}
		cur = next
		if seg.Repeat {
			if !cur.IsArray() {
				return gjson.Result{}, false
			}
			first := cur.Get("0")
			if !first.Exists() {
				return gjson.Result{}, false
			}
			cur = first
		}
	}
	return cur, true
}

// child looks key up on an object. Arrays and scalars have no named children,
// so "periods.0" never indexes into a list.
func child(r gjson.Result, key string) (gjson.Result, bool) {
	if !r.IsObject() {
		return gjson.Result{}, false
	}
	v := r.Get(gjson.Escape(key))
	return v, v.Exists()
}

// FlattenArrayPath expands every array on bracketPath and returns the items
// of the deepest one, depth-first in source order. When the last step holds a
// single non-array value, that value is the only item.
func FlattenArrayPath(doc gjson.Result, bracketPath string) []gjson.Result {
	return flattenPath(doc, ParsePath(bracketPath))
}

func flattenPath(doc gjson.Result, p Path) []gjson.Result {
	groups := p.groups()
	if len(groups) == 0 {
		return nil
	}
	return flattenGroups(doc, groups, 0)
}

func flattenGroups(cur gjson.Result, groups []group, i int) []gjson.Result {
	if i == len(groups) {
		return []gjson.Result{cur}
	}
	v, ok := walkKeys(cur, groups[i].keys)
	if !ok {
		return nil
	}
	if !v.IsArray() {
		if i == len(groups)-1 && v.Type != gjson.Null {
			return []gjson.Result{v}
		}
		return nil
	}
	var out []gjson.Result
	v.ForEach(func(_, el gjson.Result) bool {
		out = append(out, flattenGroups(el, groups, i+1)...)
		return true
	})
	return out
}

func walkKeys(cur gjson.Result, keys []string) (gjson.Result, bool) {
	for _, k := range keys {
		next, ok := child(cur, k)
		if !ok {
			return gjson.Result{}, false
		}
		cur = next
	}
	return cur, true
}

// isNull reports a missing or JSON null result.
func isNull(r gjson.Result) bool {
	return !r.Exists() || r.Type == gjson.Null
}
