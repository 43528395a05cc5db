package treesync

import "errors"

// All of these abort the current traversal. The peers' trees may disagree afterwards
// and the only remedy is a full resend.
var (
	// ErrUnknownReference is returned when a back-reference names an id that was never
	// registered.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrUnexpectedState is returned when a message state is not valid at its position
	// in the stream.
	ErrUnexpectedState = errors.New("unexpected message state")
	// ErrMalformedListEncoding is returned when the position array of a list is missing
	// or ill-shaped.
	ErrMalformedListEncoding = errors.New("malformed list encoding")
	// ErrUnsupportedValueConversion is returned when an inline payload can't be
	// converted to the expected type.
	ErrUnsupportedValueConversion = errors.New("unsupported value conversion")
	// ErrTypeIdentifierUnresolved is returned when a value type identifier has no
	// local type.
	ErrTypeIdentifierUnresolved = errors.New("type identifier unresolved")
)
