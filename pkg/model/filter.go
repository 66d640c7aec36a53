package model

// Operator is a client-facing filter operator name, as it appears in a query
// string (e.g. `age[gt]=30`).
type Operator string

const (
	OpEq      Operator = "eq"      // Equal
	OpNe      Operator = "ne"      // Not equal
	OpGt      Operator = "gt"      // Greater than
	OpGte     Operator = "gte"     // Greater than or equal
	OpLt      Operator = "lt"      // Less than
	OpLte     Operator = "lte"     // Less than or equal
	OpAll     Operator = "all"     // Array contains every value
	OpIn      Operator = "in"      // Value in array
	OpNin     Operator = "nin"     // Value not in array
	OpRegex   Operator = "regex"   // Pattern match
	OpOptions Operator = "options" // Regex flags
	OpSize    Operator = "size"    // Array length
	OpExists  Operator = "exists"  // Field presence
	OpAnd     Operator = "and"
	OpOr      Operator = "or"
	OpNor     Operator = "nor"
	OpNot     Operator = "not"
)

// Operators returns every recognized operator name.
func Operators() []Operator {
	return []Operator{
		OpEq, OpNe, OpGt, OpGte, OpLt, OpLte,
		OpAll, OpIn, OpNin,
		OpRegex, OpOptions, OpSize, OpExists,
		OpAnd, OpOr, OpNor, OpNot,
	}
}

var operatorSet = func() map[Operator]struct{} {
	set := make(map[Operator]struct{})
	for _, op := range Operators() {
		set[op] = struct{}{}
	}
	return set
}()

// IsValid checks if the operator is one of the recognized names.
func (op Operator) IsValid() bool {
	_, ok := operatorSet[op]
	return ok
}

// IsCombinator reports whether op combines filter fragments.
func (op Operator) IsCombinator() bool {
	switch op {
	case OpAnd, OpOr, OpNor, OpNot:
		return true
	}
	return false
}

// Native returns the MongoDB spelling of the operator ("eq" -> "$eq").
func (op Operator) Native() string {
	return "$" + string(op)
}

// LookupOperator returns the operator named by key. A key that is not an
// operator name is a field name.
func LookupOperator(key string) (Operator, bool) {
	op := Operator(key)
	return op, op.IsValid()
}

// RegexOptions lists the accepted values of the "options" operator.
func RegexOptions() []string {
	return []string{"i", "m", "x", "s", "u"}
}
