// Package schema builds request validators from declared field kinds.
package schema

import (
	"time"

	"github.com/syntrixbase/wallpaper/pkg/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxDepth is the default bound for nested shape descent.
const MaxDepth = 5

// Flatten turns a nested shape declaration into dot-joined field paths.
//
// A value is bound to its path when it is a kind tag or a primitive. Nested
// mappings are descended with depth-1; arrays are transparent and their
// elements are bound at the array's own path. At depth 0 nothing is emitted,
// so a branch deeper than the bound is dropped as a whole.
func Flatten(shape map[string]interface{}, depth int) model.FieldKinds {
	out := make(model.FieldKinds)
	flattenInto(out, "", shape, depth)
	return out
}

func flattenInto(out model.FieldKinds, prefix string, shape map[string]interface{}, depth int) {
	if depth <= 0 {
		return
	}
	for key, value := range shape {
		bindValue(out, joinPath(prefix, key), value, depth)
	}
}

func bindValue(out model.FieldKinds, path string, value interface{}, depth int) {
	if kind, ok := leafKind(value); ok {
		out[path] = kind
		return
	}
	if nested, ok := asShape(value); ok {
		flattenInto(out, path, nested, depth-1)
		return
	}
	if items, ok := asList(value); ok {
		for _, item := range items {
			bindValue(out, path, item, depth)
		}
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// leafKind resolves kind tags and primitive samples.
func leafKind(value interface{}) (model.Kind, bool) {
	switch v := value.(type) {
	case model.Kind:
		return v, v.IsValid()
	case string:
		if k, err := model.ParseKind(v); err == nil {
			return k, true
		}
		return model.KindString, true
	case bool:
		return model.KindBoolean, true
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return model.KindNumber, true
	case time.Time, primitive.DateTime:
		return model.KindDate, true
	case primitive.ObjectID:
		return model.KindString, true
	}
	return "", false
}

func asShape(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case bson.M:
		return v, true
	case model.FieldKinds:
		out := make(map[string]interface{}, len(v))
		for k, kind := range v {
			out[k] = kind
		}
		return out, true
	case map[string]string:
		out := make(map[string]interface{}, len(v))
		for k, tag := range v {
			out[k] = tag
		}
		return out, true
	}
	return nil, false
}

func asList(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case []interface{}:
		return v, true
	case bson.A:
		return v, true
	case []map[string]interface{}:
		out := make([]interface{}, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out, true
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
