package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/syntrixbase/wallpaper/internal/query/filter"
	"github.com/syntrixbase/wallpaper/internal/query/schema"
	"github.com/syntrixbase/wallpaper/pkg/model"
)

// Relation declares a field that can be embedded from another collection.
type Relation struct {
	// Collection holds the related documents.
	Collection string
	// LocalField defaults to the relation name.
	LocalField string
	// ForeignField defaults to "_id".
	ForeignField string
	// JustOne is the default for populate's justOne.
	JustOne bool
	// Kinds declares the filterable fields of the related documents.
	Kinds model.FieldKinds
	// Relations of the related documents, for nested populate.
	Relations map[string]Relation
}

// Structured populate keys.
const (
	populatePath     = "path"
	populateSelect   = "select"
	populateMatch    = "match"
	populateOptions  = "options"
	populateJustOne  = "justOne"
	populateOrdered  = "ordered"
	populatePopulate = "populate"

	optionSkip = "skip"
)

type relationSchema struct {
	name   string
	rel    Relation
	schema *schema.Schema
	// nested is nil once the depth bound is reached.
	nested *embedValidator
}

// embedValidator validates the "embed" option: a relation name (or a comma
// separated list of names), a list of names, a populate object or a list of
// them. Its output is []Populate.
type embedValidator struct {
	relations map[string]*relationSchema
}

func compileRelations(relations map[string]Relation, depth, maxLimit int) (*embedValidator, error) {
	ev := &embedValidator{relations: make(map[string]*relationSchema, len(relations))}
	for name, rel := range relations {
		if name == "" {
			return nil, fmt.Errorf("relation name cannot be empty")
		}
		if rel.Collection == "" {
			return nil, fmt.Errorf("relation %q: collection is required", name)
		}
		if rel.LocalField == "" {
			rel.LocalField = name
		}
		if rel.ForeignField == "" {
			rel.ForeignField = "_id"
		}
		s, err := schema.Compile(rel.Kinds,
			schema.WithMaxLimit(maxLimit),
			schema.WithObjectIDFields(schema.ObjectIDField))
		if err != nil {
			return nil, fmt.Errorf("relation %q: %w", name, err)
		}
		rs := &relationSchema{name: name, rel: rel, schema: s}
		if depth > 1 && len(rel.Relations) > 0 {
			if rs.nested, err = compileRelations(rel.Relations, depth-1, maxLimit); err != nil {
				return nil, fmt.Errorf("relation %q: %w", name, err)
			}
		}
		ev.relations[name] = rs
	}
	return ev, nil
}

func (ev *embedValidator) Validate(value interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	if s, ok := value.(string); ok {
		return ev.validateNames(strings.Split(s, ","), path, verr)
	}
	if obj, ok := value.(map[string]interface{}); ok {
		pop, ok := ev.validateObject(obj, path, verr)
		if !ok {
			return nil, false
		}
		return []Populate{pop}, true
	}

	var items []interface{}
	switch v := value.(type) {
	case []interface{}:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	default:
		verr.Add(model.IssueInvalidType, path, "expected relation name, populate object or array, received %T", value)
		return nil, false
	}

	out := make([]Populate, 0, len(items))
	valid := true
	for i, item := range items {
		switch v := item.(type) {
		case string:
			pop, ok := ev.resolve(v, path.Index(i), verr)
			if !ok {
				valid = false
				continue
			}
			out = append(out, pop)
		case map[string]interface{}:
			pop, ok := ev.validateObject(v, path.Index(i), verr)
			if !ok {
				valid = false
				continue
			}
			out = append(out, pop)
		default:
			verr.Add(model.IssueInvalidType, path.Index(i), "expected relation name or populate object, received %T", item)
			valid = false
		}
	}
	return out, valid
}

func (ev *embedValidator) validateNames(names []string, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	out := make([]Populate, 0, len(names))
	valid := true
	for _, name := range names {
		pop, ok := ev.resolve(strings.TrimSpace(name), path, verr)
		if !ok {
			valid = false
			continue
		}
		out = append(out, pop)
	}
	return out, valid
}

// resolve builds the default populate of a named relation.
func (ev *embedValidator) resolve(name string, path model.Path, verr *model.ValidationError) (Populate, bool) {
	rs, ok := ev.relations[name]
	if !ok {
		verr.Add(model.IssueInvalidValue, path, "unknown relation %q, expected one of %s", name, ev.names())
		return Populate{}, false
	}
	return Populate{
		Path:         name,
		JustOne:      rs.rel.JustOne,
		Collection:   rs.rel.Collection,
		LocalField:   rs.rel.LocalField,
		ForeignField: rs.rel.ForeignField,
	}, true
}

func (ev *embedValidator) validateObject(obj map[string]interface{}, path model.Path, verr *model.ValidationError) (Populate, bool) {
	name, ok := obj[populatePath].(string)
	if !ok {
		verr.Add(model.IssueInvalidType, path.Key(populatePath), "expected relation name, received %T", obj[populatePath])
		return Populate{}, false
	}
	pop, ok := ev.resolve(name, path.Key(populatePath), verr)
	if !ok {
		return Populate{}, false
	}
	rs := ev.relations[name]

	valid := true
	var unknown []string
	for key, raw := range obj {
		at := path.Key(key)
		switch key {
		case populatePath:
		case populateSelect:
			if s, isString := raw.(string); isString {
				raw = strings.Fields(s)
			}
			v, ok := rs.schema.ParseOption(schema.KeySelect, raw, at, verr)
			if !ok {
				valid = false
				continue
			}
			pop.Select = strings.Join(v.([]string), " ")
		case populateMatch:
			m, ok := rs.schema.ParseFragment(raw, at, verr)
			if !ok {
				valid = false
				continue
			}
			pop.Match = filter.Build(m)
		case populateOptions:
			if !rs.parseOptions(raw, at, &pop, verr) {
				valid = false
			}
		case populateJustOne, populateOrdered:
			b, err := schema.Coerce(model.KindBoolean, raw)
			if err != nil {
				verr.Add(model.IssueInvalidType, at, "%v", err)
				valid = false
				continue
			}
			if key == populateJustOne {
				pop.JustOne = b.(bool)
			} else {
				pop.Ordered = b.(bool)
			}
		case populatePopulate:
			if rs.nested == nil {
				verr.Add(model.IssueTooDeep, at, "relation %q cannot populate further", name)
				valid = false
				continue
			}
			v, ok := rs.nested.Validate(raw, at, verr)
			if !ok {
				valid = false
				continue
			}
			pop.Populate = v.([]Populate)
		default:
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		verr.Add(model.IssueUnrecognizedKeys, path, "unrecognized key(s) in populate: %s", strings.Join(unknown, ", "))
		valid = false
	}
	return pop, valid
}

// parseOptions validates {sort, skip, limit} of a populate.
func (rs *relationSchema) parseOptions(raw interface{}, path model.Path, pop *Populate, verr *model.ValidationError) bool {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		verr.Add(model.IssueInvalidType, path, "expected object, received %T", raw)
		return false
	}
	valid := true
	var unknown []string
	for key, value := range obj {
		at := path.Key(key)
		switch key {
		case schema.KeySort, schema.KeyLimit:
			v, ok := rs.schema.ParseOption(key, value, at, verr)
			if !ok {
				valid = false
				continue
			}
			if key == schema.KeySort {
				pop.Sort = sortDoc(v.([]string))
			} else {
				pop.Limit = int64Of(v, at)
			}
		case optionSkip:
			n, ok := nonNegative(value)
			if !ok {
				verr.Add(model.IssueInvalidType, at, "expected non-negative integer, received %v", value)
				valid = false
				continue
			}
			pop.Skip = &n
		default:
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		verr.Add(model.IssueUnrecognizedKeys, path, "unrecognized key(s) in populate options: %s", strings.Join(unknown, ", "))
		valid = false
	}
	return valid
}

func (ev *embedValidator) names() string {
	names := make([]string, 0, len(ev.relations))
	for name := range ev.relations {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func nonNegative(v interface{}) (int64, bool) {
	f, err := schema.Coerce(model.KindNumber, v)
	if err != nil {
		return 0, false
	}
	n := f.(float64)
	if n < 0 || n != float64(int64(n)) {
		return 0, false
	}
	return int64(n), true
}

var _ schema.Validator = (*embedValidator)(nil)
