package treesync

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reg := testRegistry()
	reg.Register("span", span{}, nil)

	id, found := reg.TypeID(reflect.TypeOf((**item)(nil)).Elem())
	require.True(t, found)
	require.Equal(t, "item", id)
	_, found = reg.TypeID(reflect.TypeOf((*item)(nil)).Elem())
	require.False(t, found)

	typ, found := reg.TypeFromID("span")
	require.True(t, found)
	require.Equal(t, reflect.TypeOf((*span)(nil)).Elem(), typ)
	_, found = reg.TypeFromID("nosuchtype")
	require.False(t, found)

	_, found = reg.Codec(reflect.TypeOf((**item)(nil)).Elem())
	require.True(t, found)
	_, found = reg.Codec(reflect.TypeOf((**tag)(nil)).Elem())
	require.False(t, found)

	v, err := reg.New("item")
	require.NoError(t, err)
	require.Equal(t, &item{}, v)
	v, err = reg.New("span")
	require.NoError(t, err)
	require.Equal(t, span{}, v)
	_, err = reg.New("nosuchtype")
	require.ErrorIs(t, err, ErrTypeIdentifierUnresolved)
}

func TestRegistryMisuse(t *testing.T) {
	reg := testRegistry()
	require.Panics(t, func() { reg.Register("item", &span{}, nil) })
	require.Panics(t, func() { reg.Register("item2", &item{}, nil) })
	require.Panics(t, func() { reg.Register("", &span{}, nil) })
	require.Panics(t, func() { reg.Register("nil", nil, nil) })
	require.Panics(t, func() { RegisterType[Codec](reg, "codec", nil) })
}

func TestState(t *testing.T) {
	require.Equal(t, "CHANGE", Change.String())
	require.Equal(t, "END_OF_OBJECT", EndOfObject.String())
	require.Equal(t, "<unknown 2a>", State(42).String())
	require.True(t, EndOfObject.Valid())
	require.False(t, State(5).Valid())
}

func TestMessageString(t *testing.T) {
	require.Equal(t, "<ADD type=item ref=3>", Message{State: Add, ValueType: "item", Ref: 3}.String())
	require.Equal(t, "<CHANGE value=[2 0 -1] trace=/item>",
		Message{State: Change, Value: []int{2, 0, -1}, Trace: "/item"}.String())
	require.True(t, Message{State: Add, Ref: 1}.IsBackReference())
	require.False(t, Message{State: Add, Ref: 1, ValueType: "tag"}.IsBackReference())
}
