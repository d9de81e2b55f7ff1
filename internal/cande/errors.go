package cande

import "fmt"

// ParseError reports malformed input. Line is 1-based; zero when the problem
// is not tied to one line.
type ParseError struct {
	Line  int
	Field string
	Msg   string
	Err   error
}

func (e *ParseError) Error() string {
	s := e.Msg
	if e.Field != "" {
		s = e.Field + ": " + s
	}
	if e.Err != nil {
		if s != "" {
			s += ": "
		}
		s += e.Err.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, s)
	}
	return s
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidReferenceError reports an element pointing at a node or material
// that does not exist. Exactly one of Node and Material is set.
type InvalidReferenceError struct {
	Element  ElementID
	Node     NodeID
	Material MaterialID
}

func (e *InvalidReferenceError) Error() string {
	if e.Node != 0 {
		return fmt.Sprintf("element %d references unknown node %d", e.Element, e.Node)
	}
	return fmt.Sprintf("element %d references unknown material %d", e.Element, e.Material)
}

// DuplicateIdError reports an insert whose id is already taken.
type DuplicateIdError struct {
	Kind string // "node", "element" or "material"
	ID   int
}

func (e *DuplicateIdError) Error() string {
	return fmt.Sprintf("duplicate %s id %d", e.Kind, e.ID)
}

// UnknownElementError reports an operation on an element id that is not in
// the model.
type UnknownElementError struct {
	ID ElementID
}

func (e *UnknownElementError) Error() string {
	return fmt.Sprintf("unknown element %d", e.ID)
}

// ValidationError reports an argument or model state that breaks a rule.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}
