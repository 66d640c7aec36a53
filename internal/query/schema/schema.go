package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/syntrixbase/wallpaper/pkg/model"
)

// Reserved top-level keys of a query document.
const (
	KeyPage   = "page"
	KeyLimit  = "limit"
	KeySelect = "select"
	KeySort   = "sort"
	KeyEmbed  = "embed"
)

// DefaultMaxLimit caps the limit option when no other bound is configured.
const DefaultMaxLimit = 100

// Schema validates whole query documents for one route. It is immutable after
// Compile and safe for concurrent use.
type Schema struct {
	kinds      model.FieldKinds
	fields     map[string]Validator
	extensions map[string]Validator
	maxLimit   int64
}

// Option configures a Schema.
type Option func(*Schema)

// WithMaxLimit bounds the limit option.
func WithMaxLimit(n int) Option {
	return func(s *Schema) {
		if n > 0 {
			s.maxLimit = int64(n)
		}
	}
}

// WithExtension validates an additional top-level key with v.
func WithExtension(key string, v Validator) Option {
	return func(s *Schema) {
		s.extensions[key] = v
	}
}

// ObjectIDField is the document id path, stored as an ObjectID.
const ObjectIDField = "_id"

// WithObjectIDFields converts the values of the given string fields to
// ObjectIDs. Paths not declared as string fields are ignored.
func WithObjectIDFields(paths ...string) Option {
	return func(s *Schema) {
		for _, path := range paths {
			if s.kinds[path] == model.KindString {
				s.fields[path] = newObjectIDValidator()
			}
		}
	}
}

// Compile builds the document validator for kinds. Every field is optional;
// "not" takes a partial per-field object and "and", "or", "nor" take lists of
// them. Combinator fragments cannot nest further combinators.
func Compile(kinds model.FieldKinds, opts ...Option) (*Schema, error) {
	if err := kinds.Validate(); err != nil {
		return nil, err
	}
	s := &Schema{
		kinds:      make(model.FieldKinds, len(kinds)),
		fields:     make(map[string]Validator, len(kinds)),
		extensions: make(map[string]Validator),
		maxLimit:   DefaultMaxLimit,
	}
	for path, kind := range kinds {
		v, err := ValidatorFor(kind)
		if err != nil {
			return nil, err
		}
		s.kinds[path] = kind
		s.fields[path] = v
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MustCompile is like Compile but panics on invalid kinds. Meant for route
// registration.
func MustCompile(kinds model.FieldKinds, opts ...Option) *Schema {
	s, err := Compile(kinds, opts...)
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	return s
}

// Kinds returns a copy of the declared field kinds.
func (s *Schema) Kinds() model.FieldKinds {
	out := make(model.FieldKinds, len(s.kinds))
	for k, v := range s.kinds {
		out[k] = v
	}
	return out
}

// Parse validates doc and returns its typed copy. The returned error is a
// *model.ValidationError listing every issue.
func (s *Schema) Parse(doc map[string]interface{}) (map[string]interface{}, error) {
	verr := &model.ValidationError{}
	out := make(map[string]interface{}, len(doc))
	var unknown []string

	for key, raw := range doc {
		path := model.Path{key}
		var (
			v  interface{}
			ok bool
		)
		switch op := model.Operator(key); {
		case op == model.OpNot:
			v, ok = s.parseFragment(raw, path, verr)
		case op.IsCombinator():
			v, ok = s.parseFragments(raw, path, verr)
		case key == KeyPage, key == KeyLimit, key == KeySelect, key == KeySort:
			v, ok = s.ParseOption(key, raw, path, verr)
		default:
			validator, known := s.extensions[key]
			if !known {
				validator, known = s.fields[key]
			}
			if !known {
				unknown = append(unknown, key)
				continue
			}
			v, ok = validator.Validate(raw, path, verr)
		}
		if ok {
			out[key] = v
		}
	}
	if len(unknown) > 0 {
		reportUnknown(verr, model.Path{}, unknown, "query")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseOption validates the value of a reserved option key (page, limit,
// select or sort) located at path. Pages and limits become int64, select and
// sort become ordered []string lists of "field" or "-field".
func (s *Schema) ParseOption(key string, raw interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	switch key {
	case KeyPage:
		return parsePositive(raw, 0, path, verr)
	case KeyLimit:
		return parsePositive(raw, s.maxLimit, path, verr)
	case KeySelect:
		return s.parseSelect(raw, path, verr)
	case KeySort:
		return s.parseSort(raw, path, verr)
	}
	verr.Add(model.IssueUnrecognizedKeys, path, "unrecognized option %q", key)
	return nil, false
}

// ParseFragment validates a partial per-field object, as used for a relation
// match condition.
func (s *Schema) ParseFragment(raw interface{}, path model.Path, verr *model.ValidationError) (map[string]interface{}, bool) {
	v, ok := s.parseFragment(raw, path, verr)
	if !ok {
		return nil, false
	}
	return v.(map[string]interface{}), true
}

func (s *Schema) parseFragment(raw interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	obj, ok := asObject(raw)
	if !ok {
		verr.Add(model.IssueInvalidType, path, "expected object, received %s", describe(raw))
		return nil, false
	}
	out := make(map[string]interface{}, len(obj))
	var unknown []string
	valid := true
	for key, value := range obj {
		validator, known := s.fields[key]
		if !known {
			unknown = append(unknown, key)
			continue
		}
		v, ok := validator.Validate(value, path.Key(key), verr)
		if !ok {
			valid = false
			continue
		}
		out[key] = v
	}
	if len(unknown) > 0 {
		reportUnknown(verr, path, unknown, "filter")
		valid = false
	}
	return out, valid
}

func (s *Schema) parseFragments(raw interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	items, ok := asArray(raw)
	if !ok {
		verr.Add(model.IssueInvalidType, path, "expected array, received %s", describe(raw))
		return nil, false
	}
	if len(items) == 0 {
		verr.Add(model.IssueTooSmall, path, "expected at least one condition")
		return nil, false
	}
	return validateList(items, path, verr, s.parseFragment)
}

func parsePositive(raw interface{}, max int64, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	n, ok := toInt(raw)
	if !ok {
		verr.Add(model.IssueInvalidType, path, "expected integer, received %s", describeValue(raw))
		return nil, false
	}
	if n < 1 {
		verr.Add(model.IssueTooSmall, path, "expected integer >= 1, received %d", n)
		return nil, false
	}
	if max > 0 && n > max {
		verr.Add(model.IssueTooBig, path, "expected integer <= %d, received %d", max, n)
		return nil, false
	}
	return n, true
}

// parseSelect accepts a list of declared field paths, each optionally
// prefixed with "-" to exclude it. Inclusion and exclusion cannot be mixed,
// except for excluding "_id".
func (s *Schema) parseSelect(raw interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	items, ok := stringList(raw)
	if !ok {
		verr.Add(model.IssueInvalidType, path, "expected array of strings, received %s", describe(raw))
		return nil, false
	}
	out := make([]string, 0, len(items))
	valid := true
	var include, exclude bool
	for i, item := range items {
		field := strings.TrimPrefix(item, "-")
		if !s.kinds.Has(field) {
			verr.Add(model.IssueInvalidValue, path.Index(i), "unknown field %q", field)
			valid = false
			continue
		}
		switch {
		case field == "_id" && field != item:
		case field != item:
			exclude = true
		default:
			include = true
		}
		out = append(out, item)
	}
	if include && exclude {
		verr.Add(model.IssueInvalidValue, path, "cannot mix field inclusion and exclusion")
		valid = false
	}
	return out, valid
}

// parseSort accepts either a mapping field -> asc|desc|1|-1 (applied in
// field name order) or an ordered list of "field" / "-field". The result is
// the ordered list form.
func (s *Schema) parseSort(raw interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	var out []string
	valid := true

	if obj, ok := asObject(raw); ok {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, field := range keys {
			if !s.kinds.Has(field) {
				verr.Add(model.IssueInvalidValue, path.Key(field), "unknown field %q", field)
				valid = false
				continue
			}
			switch strings.ToLower(fmt.Sprint(obj[field])) {
			case "asc", "ascending", "1":
				out = append(out, field)
			case "desc", "descending", "-1":
				out = append(out, "-"+field)
			default:
				verr.Add(model.IssueInvalidValue, path.Key(field), "expected asc or desc, received %s", describeValue(obj[field]))
				valid = false
			}
		}
		return out, valid
	}

	items, ok := stringList(raw)
	if !ok {
		verr.Add(model.IssueInvalidType, path, "expected object or array of strings, received %s", describe(raw))
		return nil, false
	}
	for i, item := range items {
		field := strings.TrimPrefix(item, "-")
		if !s.kinds.Has(field) {
			verr.Add(model.IssueInvalidValue, path.Index(i), "unknown field %q", field)
			valid = false
			continue
		}
		out = append(out, item)
	}
	return out, valid
}

// stringList accepts a string or a list of strings.
func stringList(raw interface{}) ([]string, bool) {
	if s, ok := raw.(string); ok {
		return []string{s}, true
	}
	items, ok := asArray(raw)
	if !ok {
		return nil, false
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}
