package treesync

import (
	"fmt"
	"reflect"
)

type typeInfo struct {
	id    string
	typ   reflect.Type
	codec Codec
}

// Registry maps local runtime types to cross-process type identifiers and to the
// codecs describing their fields. Types without a codec are sent inline.
// A Registry is populated once at startup and is read-only afterwards, so it may be
// shared by any number of queues.
type Registry struct {
	byType map[reflect.Type]*typeInfo
	byID   map[string]*typeInfo
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*typeInfo),
		byID:   make(map[string]*typeInfo),
	}
}

// Register associates the runtime type of sample with id and, optionally, a codec.
// Codec-backed types are expected to be pointer types so that identity is preserved.
func (r *Registry) Register(id string, sample any, codec Codec) {
	if sample == nil {
		panic("BUG: Registry: nil sample for " + id)
	}
	r.register(id, reflect.TypeOf(sample), codec)
}

// RegisterType is Register with the type given as a type parameter.
func RegisterType[T any](r *Registry, id string, codec Codec) {
	r.register(id, reflect.TypeOf((*T)(nil)).Elem(), codec)
}

func (r *Registry) register(id string, t reflect.Type, codec Codec) {
	if id == "" {
		panic("BUG: Registry: empty type id")
	}
	if t.Kind() == reflect.Interface {
		panic("BUG: Registry: can't register interface type " + t.String())
	}
	if _, found := r.byID[id]; found {
		panic(fmt.Sprintf("BUG: Registry: duplicate type id %q", id))
	}
	if _, found := r.byType[t]; found {
		panic(fmt.Sprintf("BUG: Registry: duplicate type %s", t))
	}
	info := &typeInfo{id: id, typ: t, codec: codec}
	r.byType[t] = info
	r.byID[id] = info
}

// TypeID returns the identifier of the runtime type t.
func (r *Registry) TypeID(t reflect.Type) (string, bool) {
	info, found := r.byType[t]
	if !found {
		return "", false
	}
	return info.id, true
}

// TypeFromID returns the runtime type registered under id.
func (r *Registry) TypeFromID(id string) (reflect.Type, bool) {
	info, found := r.byID[id]
	if !found {
		return nil, false
	}
	return info.typ, true
}

// Codec returns the codec registered for t, if any.
func (r *Registry) Codec(t reflect.Type) (Codec, bool) {
	info, found := r.byType[t]
	if !found || info.codec == nil {
		return nil, false
	}
	return info.codec, true
}

// New allocates an empty value of the type registered under id. For pointer types it
// is a pointer to a zero value.
func (r *Registry) New(id string) (any, error) {
	info, found := r.byID[id]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrTypeIdentifierUnresolved, id)
	}
	if info.typ.Kind() == reflect.Pointer {
		return reflect.New(info.typ.Elem()).Interface(), nil
	}
	return reflect.New(info.typ).Elem().Interface(), nil
}

func (r *Registry) lookup(v any) *typeInfo {
	if v == nil {
		return nil
	}
	return r.byType[reflect.TypeOf(v)]
}

// CodecFuncs adapts a pair of typed functions to the Codec interface.
type CodecFuncs[T any] struct {
	Send    func(after T, q *SendQueue) error
	Receive func(before T, q *ReceiveQueue) (T, error)
}

var _ Codec = CodecFuncs[any]{}

// SendFields implements Codec.
func (c CodecFuncs[T]) SendFields(after any, q *SendQueue) error {
	return c.Send(after.(T), q)
}

// ReceiveFields implements Codec.
func (c CodecFuncs[T]) ReceiveFields(before any, q *ReceiveQueue) (any, error) {
	v, err := c.Receive(before.(T), q)
	if err != nil {
		return nil, err
	}
	return normalize(v), nil
}
