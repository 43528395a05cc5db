package lst

import "fmt"

// Visibility of a declaration.
type Visibility uint8

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Public:
		return "public"
	}
	return fmt.Sprintf("<unknown visibility %d>", uint8(v))
}

// MarshalText implements encoding.TextMarshaler.
func (v Visibility) MarshalText() ([]byte, error) {
	switch v {
	case Private, Public:
		return []byte(v.String()), nil
	}
	return nil, fmt.Errorf("invalid visibility %d", uint8(v))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Visibility) UnmarshalText(text []byte) error {
	switch string(text) {
	case "private":
		*v = Private
	case "public":
		*v = Public
	default:
		return fmt.Errorf("invalid visibility %q", text)
	}
	return nil
}

// Operator of a binary expression.
type Operator uint8

const (
	OpAdd Operator = iota + 1
	OpSub
	OpMul
	OpDiv
)

var operators = map[Operator]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
}

func (op Operator) String() string {
	if s, found := operators[op]; found {
		return s
	}
	return fmt.Sprintf("<unknown operator %d>", uint8(op))
}

// MarshalText implements encoding.TextMarshaler.
func (op Operator) MarshalText() ([]byte, error) {
	if s, found := operators[op]; found {
		return []byte(s), nil
	}
	return nil, fmt.Errorf("invalid operator %d", uint8(op))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (op *Operator) UnmarshalText(text []byte) error {
	for o, s := range operators {
		if s == string(text) {
			*op = o
			return nil
		}
	}
	return fmt.Errorf("invalid operator %q", text)
}
