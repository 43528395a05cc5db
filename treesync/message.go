// Package treesync implements differential synchronization of immutable trees.
//
// The sender walks a (before, after) pair of trees and emits one Message per field,
// describing whether the field is unchanged, added, deleted or changed. Unchanged
// subtrees are detected by identity, so trees produced by copy-on-write edits (where an
// edit only allocates new nodes along the path to the root) produce compact diffs. The
// receiver replays the same traversal against its copy of "before" and rebuilds "after".
//
// Interactions for a single object field:
//
//	NO_CHANGE                      identical value, nothing follows
//	DELETE                         the value is gone
//	ADD ref=N                      back-reference to an object sent earlier
//	ADD type=T value=V [ref=N]     inline value
//	ADD type=T [ref=N]             empty shell of T, its fields follow
//	CHANGE type=T                  fields of T follow
//	CHANGE value=V                 inline scalar replacement
//
// Lists are encoded as the list state message (ADD/CHANGE), followed by a CHANGE message
// carrying the position array, followed by one state message per after element.
package treesync

import (
	"fmt"
	"strings"
)

// State is the kind of change a Message describes.
type State byte

const (
	NoChange State = iota
	Add
	Delete
	Change
	// EndOfObject is reserved for variable-arity child sequences. It is never emitted
	// and is rejected by the receiver.
	EndOfObject
)

var stateNames = []string{
	"NO_CHANGE",
	"ADD",
	"DELETE",
	"CHANGE",
	"END_OF_OBJECT",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("<unknown %02x>", int(s))
}

// Valid returns true if s is a known state.
func (s State) Valid() bool {
	return int(s) < len(stateNames)
}

// AddedListItem is the position array entry of an after-list element that has no
// counterpart in the before list.
const AddedListItem = -1

// Message describes the change of a single value.
type Message struct {
	State State
	// ValueType is the cross-process type identifier, empty when not needed.
	ValueType string
	// Value is the inline payload, nil when the fields follow as separate messages.
	Value any
	// Ref is the reference table id, 0 when the value is not shared by reference.
	Ref int
	// Trace is diagnostic only.
	Trace any
}

// IsBackReference returns true if the message is an ADD that only refers to an object
// the peer already holds.
func (m Message) IsBackReference() bool {
	return m.State == Add && m.Ref != 0 && m.ValueType == "" && m.Value == nil
}

func (m Message) String() string {
	var sb strings.Builder
	sb.WriteString("<" + m.State.String())
	if m.ValueType != "" {
		sb.WriteString(" type=" + m.ValueType)
	}
	if m.Value != nil {
		s := fmt.Sprintf("%v", m.Value)
		if len(s) > 40 {
			s = s[:40] + "..."
		}
		sb.WriteString(" value=" + s)
	}
	if m.Ref != 0 {
		fmt.Fprintf(&sb, " ref=%d", m.Ref)
	}
	if m.Trace != nil {
		fmt.Fprintf(&sb, " trace=%v", m.Trace)
	}
	sb.WriteString(">")
	return sb.String()
}
