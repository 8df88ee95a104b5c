package entities

import "strconv"

// ValueKind tells which half of a Value is populated
type ValueKind int

const (
	TextValue ValueKind = iota
	IntegerValue
)

// Value represents a resolved macro token: either an integer or text.
// Integers parsed from a token keep their literal digits in Text.
type Value struct {
	Kind ValueKind
	Int  int
	Text string
}

// NewText - creates a text value
func NewText(text string) Value {
	return Value{Kind: TextValue, Text: text}
}

// NewInteger - creates an integer value
func NewInteger(n int) Value {
	return Value{Kind: IntegerValue, Int: n}
}

// ParseInteger - creates an integer value remembering the digits it was written with
func ParseInteger(n int, literal string) Value {
	return Value{Kind: IntegerValue, Int: n, Text: literal}
}

// IsInteger - reports whether the value holds an integer
func (v Value) IsInteger() bool {
	return v.Kind == IntegerValue
}

// String - renders the value as it is sent to the page or stored in a variable
func (v Value) String() string {
	if v.Kind == IntegerValue && v.Text == "" {
		return strconv.Itoa(v.Int)
	}
	return v.Text
}
