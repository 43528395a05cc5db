package treesync

import (
	"fmt"
	"reflect"
)

// RefTable tracks objects shared by reference with a single peer.
// The sending half maps object identity to ids assigned from 1 upwards, the receiving
// half maps the ids chosen by the peer to the reconstructed objects.
// A RefTable lives as long as the peer connection and is shared by all traversals over
// it. It is not safe for concurrent use: traversals sharing a table must be serialized
// by the caller.
type RefTable struct {
	ids  map[any]int
	next int
	objs map[int]any
}

// NewRefTable creates an empty reference table.
func NewRefTable() *RefTable {
	return &RefTable{
		ids:  make(map[any]int),
		objs: make(map[int]any),
	}
}

// Assign returns the id of v, assigning a fresh one if v has not been seen yet.
// The second return value is true if the id was already assigned.
func (t *RefTable) Assign(v any) (id int, existing bool) {
	if v == nil {
		panic("BUG: RefTable: can't assign an id to nil")
	}
	if !reflect.TypeOf(v).Comparable() {
		panic(fmt.Sprintf("BUG: RefTable: %T can't be shared by reference", v))
	}
	if id, found := t.ids[v]; found {
		return id, true
	}
	t.next++
	t.ids[v] = t.next
	return t.next, false
}

// ID returns the id assigned to v on the sending side.
func (t *RefTable) ID(v any) (int, bool) {
	if v == nil || !reflect.TypeOf(v).Comparable() {
		return 0, false
	}
	id, found := t.ids[v]
	return id, found
}

// Register binds ref to v on the receiving side. Registering a ref again replaces the
// object, which happens when a shell is replaced by the finished object.
func (t *RefTable) Register(ref int, v any) {
	if ref <= 0 {
		panic("BUG: RefTable: bad ref")
	}
	t.objs[ref] = v
}

// Lookup returns the object registered under ref on the receiving side.
func (t *RefTable) Lookup(ref int) (any, bool) {
	v, found := t.objs[ref]
	return v, found
}

// Forget removes a received ref.
func (t *RefTable) Forget(ref int) {
	delete(t.objs, ref)
}

// Reset clears both halves of the table. Id assignment restarts from 1, so it must be
// done on both peers at the same time.
func (t *RefTable) Reset() {
	clear(t.ids)
	clear(t.objs)
	t.next = 0
}

// Len returns the number of sent and received references.
func (t *RefTable) Len() (sent, received int) {
	return len(t.ids), len(t.objs)
}
