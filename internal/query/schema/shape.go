package schema

import (
	"reflect"
	"strings"
	"time"

	goreflect "github.com/goccy/go-reflect"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syntrixbase/wallpaper/pkg/model"
)

const shapeTag = "bson"

var (
	timeTyp     = goreflect.TypeOf(*new(time.Time))
	dateTimeTyp = goreflect.TypeOf(*new(primitive.DateTime))
	objectIDTyp = goreflect.TypeOf(*new(primitive.ObjectID))
)

// ShapeOf derives a nested shape declaration from the struct type of v, keyed
// by bson field names. Pass the result to Flatten to get field kinds.
// Unsupported field types (maps, interfaces, funcs) are left out.
func ShapeOf(v interface{}) map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	shape, _ := shapeOfType(goreflect.TypeOf(v), MaxDepth+1).(map[string]interface{})
	if shape == nil {
		return map[string]interface{}{}
	}
	return shape
}

func shapeOfType(t goreflect.Type, depth int) interface{} {
	if depth <= 0 {
		return nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeTyp, dateTimeTyp:
		return model.KindDate
	case objectIDTyp:
		return model.KindString
	}

	switch t.Kind() {
	case reflect.String:
		return model.KindString
	case reflect.Bool:
		return model.KindBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return model.KindNumber
	case reflect.Slice, reflect.Array:
		elem := shapeOfType(t.Elem(), depth)
		if elem == nil {
			return nil
		}
		return []interface{}{elem}
	case reflect.Struct:
		return structShape(t, depth)
	}
	return nil
}

func structShape(t goreflect.Type, depth int) interface{} {
	shape := make(map[string]interface{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue
		}
		name, inline, skip := fieldName(f)
		if skip {
			continue
		}
		if inline {
			if sub, ok := shapeOfType(f.Type, depth).(map[string]interface{}); ok {
				for k, v := range sub {
					shape[k] = v
				}
			}
			continue
		}
		if v := shapeOfType(f.Type, depth-1); v != nil {
			shape[name] = v
		}
	}
	if len(shape) == 0 {
		return nil
	}
	return shape
}

func fieldName(f goreflect.StructField) (name string, inline, skip bool) {
	name = f.Name
	tag, ok := f.Tag.Lookup(shapeTag)
	if !ok {
		return strings.ToLower(name), false, false
	}
	if tag == "-" {
		return "", false, true
	}
	segments := strings.Split(tag, ",")
	if segments[0] != "" {
		name = segments[0]
	} else {
		name = strings.ToLower(name)
	}
	for _, opt := range segments[1:] {
		if opt == "inline" {
			inline = true
		}
	}
	return name, inline, false
}
