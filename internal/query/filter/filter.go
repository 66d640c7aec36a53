// Package filter compiles validated query documents into MongoDB filters.
package filter

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syntrixbase/wallpaper/pkg/model"
)

// Build rewrites every operator key of doc into its "$" form and returns the
// MongoDB filter. Any other key is kept as a literal field path, so a field
// named after an operator is always read as the operator. An empty doc yields
// the match-all filter.
//
// doc must come out of schema.Parse. Build is single pass: feeding it an
// already compiled filter is not supported. A value of a type the validator
// never produces panics with *model.InvariantError.
func Build(doc map[string]interface{}) bson.M {
	out := bson.M{}
	for key, value := range doc {
		out[compileKey(key)] = compile(value, model.Path{key})
	}
	return out
}

func compileKey(key string) string {
	if op, ok := model.LookupOperator(key); ok {
		return op.Native()
	}
	return key
}

func compile(value interface{}, path model.Path) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return compileObject(v, path)
	case bson.M:
		return compileObject(v, path)
	case []interface{}:
		return compileList(v, path)
	case bson.A:
		return compileList(v, path)
	case []string:
		out := make(bson.A, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case nil, string, bool, float64, int64, int, int32,
		time.Time, primitive.DateTime, primitive.ObjectID, primitive.Regex:
		return v
	default:
		panic(&model.InvariantError{Path: path, Value: value})
	}
}

func compileObject(obj map[string]interface{}, path model.Path) bson.M {
	out := make(bson.M, len(obj))
	for key, value := range obj {
		out[compileKey(key)] = compile(value, path.Key(key))
	}
	return out
}

func compileList(items []interface{}, path model.Path) bson.A {
	out := make(bson.A, len(items))
	for i, item := range items {
		out[i] = compile(item, path.Index(i))
	}
	return out
}
