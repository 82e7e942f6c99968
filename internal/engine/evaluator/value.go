// # internal/engine/evaluator/value.go
package evaluator

type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
)

// Value is the structural reduction of an expression: plain data plus the
// builder-call markers used by route resolution. The markers are struct
// fields, so source object keys can never collide with them.
type Value struct {
	Kind Kind

	Str  string
	Num  float64
	Bool bool

	keys     []string
	children map[string]*Value

	IsRouter      bool
	IsMethodCall  bool
	IsFunction    bool
	Method        string
	Path          string
	RouterOptions *Value
}

func Null() *Value {
	return &Value{Kind: KindNull}
}

func NewObject() *Value {
	return &Value{Kind: KindObject}
}

func (v *Value) IsNull() bool {
	return v == nil || v.Kind == KindNull
}

func (v *Value) IsObject() bool {
	return v != nil && v.Kind == KindObject
}

// Tagged reports whether the value carries any builder-call marker.
func (v *Value) Tagged() bool {
	return v != nil && (v.IsRouter || v.IsMethodCall || v.IsFunction)
}

// Set stores a child under key, preserving first-insertion order across
// overwrites.
func (v *Value) Set(key string, child *Value) {
	if v.children == nil {
		v.children = make(map[string]*Value)
	}
	if _, exists := v.children[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.children[key] = child
}

func (v *Value) Get(key string) (*Value, bool) {
	if v == nil || v.children == nil {
		return nil, false
	}
	child, ok := v.children[key]
	return child, ok
}

// Keys returns the child keys in insertion order.
func (v *Value) Keys() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

// StringField returns the child's text when the child exists and is a string.
func (v *Value) StringField(key string) (string, bool) {
	child, ok := v.Get(key)
	if !ok || child == nil || child.Kind != KindString {
		return "", false
	}
	return child.Str, true
}
