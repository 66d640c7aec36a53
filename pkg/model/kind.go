package model

import "fmt"

// Kind is the declared primitive type of a filterable field.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindDate    Kind = "date"
)

// Kinds returns all declarable kinds.
func Kinds() []Kind {
	return []Kind{KindString, KindNumber, KindBoolean, KindDate}
}

// IsValid checks if the kind is one of the closed set.
func (k Kind) IsValid() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindDate:
		return true
	}
	return false
}

// ParseKind converts a kind tag into a Kind.
func ParseKind(tag string) (Kind, error) {
	k := Kind(tag)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown field kind %q", tag)
	}
	return k, nil
}

// FieldKinds maps a dot-delimited field path to its declared kind.
type FieldKinds map[string]Kind

// Validate checks every path is non-empty and every kind is known.
func (fk FieldKinds) Validate() error {
	for path, kind := range fk {
		if path == "" {
			return fmt.Errorf("field path cannot be empty")
		}
		if !kind.IsValid() {
			return fmt.Errorf("field %q: unknown field kind %q", path, kind)
		}
	}
	return nil
}

// Has reports whether path is a declared field.
func (fk FieldKinds) Has(path string) bool {
	_, ok := fk[path]
	return ok
}
