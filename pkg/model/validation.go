package model

import (
	"fmt"
	"strconv"
	"strings"
)

// IssueCode is a machine-readable validation failure category.
type IssueCode string

const (
	IssueInvalidType      IssueCode = "invalid_type"
	IssueInvalidValue     IssueCode = "invalid_value"
	IssueUnrecognizedKeys IssueCode = "unrecognized_keys"
	IssueTooBig           IssueCode = "too_big"
	IssueTooSmall         IssueCode = "too_small"
	IssueTooDeep          IssueCode = "too_deep"
)

// Path locates a value inside a query document. Segments are either string
// keys or int array indexes.
type Path []interface{}

// Key returns a copy of p extended with a map key.
func (p Path) Key(k string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, k)
}

// Index returns a copy of p extended with an array index.
func (p Path) Index(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, i)
}

func (p Path) String() string {
	if len(p) == 0 {
		return "<root>"
	}
	var b strings.Builder
	for i, seg := range p {
		switch s := seg.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(s) + "]")
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(&b, s)
		}
	}
	return b.String()
}

// Issue is a single validation failure.
type Issue struct {
	Code    IssueCode `json:"code"`
	Path    Path      `json:"path"`
	Message string    `json:"message"`
}

// ValidationError carries every issue found while validating a query. A
// request that produces one is rejected as a whole.
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

// Name is the error name reported to clients.
func (e *ValidationError) Name() string { return "ValidationError" }

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", is.Path, is.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records an issue.
func (e *ValidationError) Add(code IssueCode, path Path, format string, args ...interface{}) {
	e.Issues = append(e.Issues, Issue{
		Code:    code,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}

// Is makes errors.Is(err, ErrInvalidQuery) hold for validation failures.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// Err returns e when it holds issues and nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}
