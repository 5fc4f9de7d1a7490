package models

import "fmt"

// TransformKind names a string transform on the wire.
type TransformKind string

const (
	TransformNone     TransformKind = "none"
	TransformSplit    TransformKind = "split"
	TransformJoin     TransformKind = "join"
	TransformReplace  TransformKind = "replace"
	TransformTemplate TransformKind = "template"
)

// StringTransform is a closed set of transforms. A nil StringTransform is
// the same as NoTransform.
type StringTransform interface {
	Kind() TransformKind
	isStringTransform()
}

type NoTransform struct{}

// SplitTransform splits a string on Delimiter. A non-empty JoinWith re-joins
// the trimmed pieces into a single string.
type SplitTransform struct {
	Delimiter string
	JoinWith  string
}

// JoinTransform joins an array value with Separator.
type JoinTransform struct {
	Separator string
}

// ReplaceTransform replaces every literal occurrence of From with To.
type ReplaceTransform struct {
	From string
	To   string
}

// TemplateTransform interpolates {path} tokens against the source document.
type TemplateTransform struct {
	Pattern string
}

func (NoTransform) Kind() TransformKind       { return TransformNone }
func (SplitTransform) Kind() TransformKind    { return TransformSplit }
func (JoinTransform) Kind() TransformKind     { return TransformJoin }
func (ReplaceTransform) Kind() TransformKind  { return TransformReplace }
func (TemplateTransform) Kind() TransformKind { return TransformTemplate }

func (NoTransform) isStringTransform()       {}
func (SplitTransform) isStringTransform()    {}
func (JoinTransform) isStringTransform()     {}
func (ReplaceTransform) isStringTransform()  {}
func (TemplateTransform) isStringTransform() {}

// TransformSpec is the persisted JSON shape of a StringTransform.
type TransformSpec struct {
	Type        TransformKind `json:"type" bson:"type"`
	Delimiter   string        `json:"delimiter,omitempty" bson:"delimiter,omitempty"`
	JoinWith    string        `json:"joinWith,omitempty" bson:"joinWith,omitempty"`
	ReplaceFrom string        `json:"replaceFrom,omitempty" bson:"replaceFrom,omitempty"`
	ReplaceTo   string        `json:"replaceTo,omitempty" bson:"replaceTo,omitempty"`
	Template    string        `json:"template,omitempty" bson:"template,omitempty"`
}

// Decode validates the spec and returns the matching transform.
// A nil spec or an empty type decodes to NoTransform.
func (t *TransformSpec) Decode() (StringTransform, error) {
	if t == nil {
		return NoTransform{}, nil
	}
	switch t.Type {
	case "", TransformNone:
		return NoTransform{}, nil
	case TransformSplit:
		if t.Delimiter == "" {
			return nil, fmt.Errorf("split transform: delimiter is required")
		}
		return SplitTransform{Delimiter: t.Delimiter, JoinWith: t.JoinWith}, nil
	case TransformJoin:
		sep := t.JoinWith
		if sep == "" {
			sep = t.Delimiter
		}
		return JoinTransform{Separator: sep}, nil
	case TransformReplace:
		if t.ReplaceFrom == "" {
			return nil, fmt.Errorf("replace transform: replaceFrom is required")
		}
		return ReplaceTransform{From: t.ReplaceFrom, To: t.ReplaceTo}, nil
	case TransformTemplate:
		return TemplateTransform{Pattern: t.Template}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownTransform, t.Type)
	}
}

// EncodeTransform is the inverse of Decode. NoTransform encodes to nil.
func EncodeTransform(t StringTransform) *TransformSpec {
	switch v := t.(type) {
	case SplitTransform:
		return &TransformSpec{Type: TransformSplit, Delimiter: v.Delimiter, JoinWith: v.JoinWith}
	case JoinTransform:
		return &TransformSpec{Type: TransformJoin, JoinWith: v.Separator}
	case ReplaceTransform:
		return &TransformSpec{Type: TransformReplace, ReplaceFrom: v.From, ReplaceTo: v.To}
	case TemplateTransform:
		return &TransformSpec{Type: TransformTemplate, Template: v.Pattern}
	default:
		return nil
	}
}
