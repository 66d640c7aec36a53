package query

import (
	"strings"

	"github.com/syntrixbase/wallpaper/internal/query/filter"
	"github.com/syntrixbase/wallpaper/internal/query/schema"
	"github.com/syntrixbase/wallpaper/pkg/model"
)

// ParseOptions splits the reserved option keys out of a validated query
// document and compiles the rest into the plan's filter.
//
// The select list is joined into "a -b" projection syntax. Skip is
// (page-1)*limit and only set when both page and limit are present and
// positive. An empty filter portion matches every document.
func ParseOptions(doc map[string]interface{}) *Plan {
	plan := &Plan{}
	rest := make(map[string]interface{}, len(doc))

	for key, value := range doc {
		path := model.Path{key}
		switch key {
		case schema.KeySelect:
			plan.Select = strings.Join(stringsOf(value, path), " ")
		case schema.KeySort:
			plan.Sort = sortDoc(stringsOf(value, path))
		case schema.KeyPage:
			plan.Page = int64Of(value, path)
		case schema.KeyLimit:
			plan.Limit = int64Of(value, path)
		case schema.KeyEmbed:
			plan.Embed = populatesOf(value, path)
		default:
			rest[key] = value
		}
	}

	plan.Filter = filter.Build(rest)
	if plan.Page != nil && plan.Limit != nil && *plan.Page > 0 && *plan.Limit > 0 {
		skip := (*plan.Page - 1) * *plan.Limit
		plan.Skip = &skip
	}
	return plan
}

func stringsOf(value interface{}, path model.Path) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []interface{}:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				panic(&model.InvariantError{Path: path.Index(i), Value: item})
			}
			out[i] = s
		}
		return out
	}
	panic(&model.InvariantError{Path: path, Value: value})
}

func int64Of(value interface{}, path model.Path) *int64 {
	var n int64
	switch v := value.(type) {
	case int64:
		n = v
	case int:
		n = int64(v)
	case float64:
		n = int64(v)
	default:
		panic(&model.InvariantError{Path: path, Value: value})
	}
	return &n
}

func populatesOf(value interface{}, path model.Path) []Populate {
	switch v := value.(type) {
	case []Populate:
		return v
	case Populate:
		return []Populate{v}
	}
	panic(&model.InvariantError{Path: path, Value: value})
}
