package schema

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/syntrixbase/wallpaper/pkg/model"
)

// Validator checks one raw value located at path and returns its coerced
// form. Failures are recorded on verr; ok is false when any were added.
type Validator interface {
	Validate(value interface{}, path model.Path, verr *model.ValidationError) (out interface{}, ok bool)
}

// opRule validates the value of one operator key.
type opRule func(fv *fieldValidator, value interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool)

// fieldValidator accepts a bare value of its kind, a list of bare values, or
// a partial operator object restricted to ops.
type fieldValidator struct {
	kind   model.Kind
	scalar coerceFunc
	ops    map[model.Operator]opRule
	// objectID fields hold hex strings that are converted to ObjectIDs.
	objectID bool
}

var (
	comparisonOps = []model.Operator{model.OpEq, model.OpNe, model.OpGt, model.OpGte, model.OpLt, model.OpLte}
	listOps       = []model.Operator{model.OpAll, model.OpIn, model.OpNin}
)

// registry maps each kind to the factory of its validator.
var registry = map[model.Kind]func() *fieldValidator{
	model.KindString: func() *fieldValidator {
		return newFieldValidator(model.KindString, coerceString,
			withOps(comparisonOps, scalarRule),
			withOps(listOps, listRule),
			withOps([]model.Operator{model.OpRegex}, regexRule),
			withOps([]model.Operator{model.OpOptions}, optionsRule),
			withCommonOps,
		)
	},
	model.KindNumber: func() *fieldValidator {
		return newFieldValidator(model.KindNumber, coerceNumber,
			withOps(comparisonOps, scalarRule),
			withOps(listOps, listRule),
			withCommonOps,
		)
	},
	model.KindBoolean: func() *fieldValidator {
		return newFieldValidator(model.KindBoolean, coerceBoolean,
			withOps([]model.Operator{model.OpEq, model.OpNe}, scalarRule),
			withCommonOps,
		)
	},
	model.KindDate: func() *fieldValidator {
		return newFieldValidator(model.KindDate, coerceDate,
			withOps(comparisonOps, scalarRule),
			withOps(listOps, listRule),
			withCommonOps,
		)
	},
}

// newObjectIDValidator validates a string field stored as an ObjectID. Regex
// operators are not accepted since they never match an ObjectID.
func newObjectIDValidator() *fieldValidator {
	fv := newFieldValidator(model.KindString, coerceObjectID,
		withOps(comparisonOps, scalarRule),
		withOps(listOps, listRule),
		withCommonOps,
	)
	fv.objectID = true
	return fv
}

// ValidatorFor returns the validator of kind.
func ValidatorFor(kind model.Kind) (Validator, error) {
	factory, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("no validator for field kind %q", kind)
	}
	return factory(), nil
}

type fieldOption func(fv *fieldValidator)

func newFieldValidator(kind model.Kind, scalar coerceFunc, opts ...fieldOption) *fieldValidator {
	fv := &fieldValidator{
		kind:   kind,
		scalar: scalar,
		ops:    make(map[model.Operator]opRule),
	}
	for _, opt := range opts {
		opt(fv)
	}
	return fv
}

func withOps(ops []model.Operator, rule opRule) fieldOption {
	return func(fv *fieldValidator) {
		for _, op := range ops {
			fv.ops[op] = rule
		}
	}
}

// withCommonOps adds the operators every kind accepts.
func withCommonOps(fv *fieldValidator) {
	fv.ops[model.OpExists] = existsRule
	fv.ops[model.OpSize] = sizeRule
}

// Operators lists the operator keys accepted by this validator.
func (fv *fieldValidator) Operators() []model.Operator {
	ops := make([]model.Operator, 0, len(fv.ops))
	for op := range fv.ops {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

func (fv *fieldValidator) Validate(value interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	if obj, ok := asObject(value); ok {
		return fv.validateOperators(obj, path, verr)
	}
	if items, ok := asArray(value); ok {
		return validateList(items, path, verr, fv.coerceAt)
	}
	return fv.coerceAt(value, path, verr)
}

func (fv *fieldValidator) validateOperators(obj map[string]interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	out := make(map[string]interface{}, len(obj))
	var unknown []string
	valid := true
	for key, raw := range obj {
		rule, ok := fv.ops[model.Operator(key)]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		v, ok := rule(fv, raw, path.Key(key), verr)
		if !ok {
			valid = false
			continue
		}
		out[key] = v
	}
	if len(unknown) > 0 {
		reportUnknown(verr, path, unknown, fmt.Sprintf("%s field (accepted: %s)", fv.kind, joinOps(fv.Operators())))
		valid = false
	}
	return out, valid
}

func (fv *fieldValidator) coerceAt(value interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	v, msg := fv.scalar(value)
	if msg != "" {
		code := model.IssueInvalidType
		if _, isString := value.(string); isString && fv.objectID {
			code = model.IssueInvalidValue
		}
		verr.Add(code, path, "%s", msg)
		return nil, false
	}
	return v, true
}

func scalarRule(fv *fieldValidator, value interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	return fv.coerceAt(value, path, verr)
}

// listRule accepts a list of bare values. A single scalar is wrapped, since
// a query string cannot spell a one element list otherwise.
func listRule(fv *fieldValidator, value interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	items, ok := asArray(value)
	if !ok {
		if _, isObj := asObject(value); isObj {
			verr.Add(model.IssueInvalidType, path, "expected array, received object")
			return nil, false
		}
		items = []interface{}{value}
	}
	return validateList(items, path, verr, fv.coerceAt)
}

func regexRule(_ *fieldValidator, value interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	v, msg := coerceString(value)
	if msg != "" {
		verr.Add(model.IssueInvalidType, path, "%s", msg)
		return nil, false
	}
	return v, true
}

func optionsRule(_ *fieldValidator, value interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	s, ok := value.(string)
	if !ok || !slices.Contains(model.RegexOptions(), s) {
		verr.Add(model.IssueInvalidValue, path, "expected one of %s, received %s",
			strings.Join(model.RegexOptions(), "|"), describeValue(value))
		return nil, false
	}
	return s, true
}

func existsRule(_ *fieldValidator, value interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	v, msg := coerceBoolean(value)
	if msg != "" {
		verr.Add(model.IssueInvalidType, path, "%s", msg)
		return nil, false
	}
	return v, true
}

// sizeRule accepts a length or a partial numeric comparison on the length.
func sizeRule(_ *fieldValidator, value interface{}, path model.Path, verr *model.ValidationError) (interface{}, bool) {
	obj, isObj := asObject(value)
	if !isObj {
		v, msg := coerceSize(value)
		if msg != "" {
			verr.Add(model.IssueInvalidType, path, "%s", msg)
			return nil, false
		}
		return v, true
	}

	out := make(map[string]interface{}, len(obj))
	var unknown []string
	valid := true
	for key, raw := range obj {
		if !slices.Contains(comparisonOps, model.Operator(key)) {
			unknown = append(unknown, key)
			continue
		}
		v, msg := coerceSize(raw)
		if msg != "" {
			verr.Add(model.IssueInvalidType, path.Key(key), "%s", msg)
			valid = false
			continue
		}
		out[key] = v
	}
	if len(unknown) > 0 {
		reportUnknown(verr, path, unknown, "size")
		valid = false
	}
	return out, valid
}

func validateList(items []interface{}, path model.Path, verr *model.ValidationError,
	each func(interface{}, model.Path, *model.ValidationError) (interface{}, bool)) (interface{}, bool) {
	out := make([]interface{}, 0, len(items))
	valid := true
	for i, item := range items {
		v, ok := each(item, path.Index(i), verr)
		if !ok {
			valid = false
			continue
		}
		out = append(out, v)
	}
	return out, valid
}

func reportUnknown(verr *model.ValidationError, path model.Path, keys []string, where string) {
	sort.Strings(keys)
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	verr.Add(model.IssueUnrecognizedKeys, path, "unrecognized key(s) in %s: %s", where, strings.Join(quoted, ", "))
}

func joinOps(ops []model.Operator) string {
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}
	return strings.Join(names, ", ")
}
