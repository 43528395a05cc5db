package lst

import (
	"github.com/google/uuid"

	"github.com/spacemeshos/go-treesync/treesync"
)

// Type identifiers of the node types.
const (
	TypeUnit     = "lst.Unit"
	TypeFuncDecl = "lst.FuncDecl"
	TypeIdent    = "lst.Ident"
	TypeLiteral  = "lst.Literal"
	TypeBinary   = "lst.Binary"
	TypeTypeRef  = "lst.TypeRef"
	TypeStyle    = "lst.Style"
	TypePosition = "lst.Position"
)

// NewRegistry returns a registry of all node types. Style and Position are sent
// inline.
func NewRegistry() *treesync.Registry {
	reg := treesync.NewRegistry()
	treesync.RegisterType[*Unit](reg, TypeUnit, unitCodec)
	treesync.RegisterType[*FuncDecl](reg, TypeFuncDecl, funcCodec)
	treesync.RegisterType[*Ident](reg, TypeIdent, identCodec)
	treesync.RegisterType[*Literal](reg, TypeLiteral, literalCodec)
	treesync.RegisterType[*Binary](reg, TypeBinary, binaryCodec)
	treesync.RegisterType[*TypeRef](reg, TypeTypeRef, typeRefCodec)
	treesync.RegisterType[*Style](reg, TypeStyle, nil)
	treesync.RegisterType[Position](reg, TypePosition, nil)
	return reg
}

// sender chains field sends, stopping at the first error.
type sender struct {
	q   *treesync.SendQueue
	err error
}

func (s *sender) do(f func(q *treesync.SendQueue) error) {
	if s.err == nil {
		s.err = f(s.q)
	}
}

// receiveField receives a single field, leaving the result untouched on a previous
// error.
func receiveField[T any](q *treesync.ReceiveQueue, err *error, dst *T, before T) {
	if *err != nil {
		return
	}
	*dst, *err = treesync.Receive(q, before, nil)
}

func receiveList[E any](q *treesync.ReceiveQueue, err *error, dst *[]E, before []E) {
	if *err != nil {
		return
	}
	*dst, *err = treesync.ReceiveList(q, before, nil)
}

func sendID[N Node](q *treesync.SendQueue, n N) error {
	return treesync.SendField(q, n, func(n N) uuid.UUID { return n.NodeID() }, nil)
}

var unitCodec = treesync.CodecFuncs[*Unit]{
	Send: func(after *Unit, q *treesync.SendQueue) error {
		s := sender{q: q}
		s.do(func(q *treesync.SendQueue) error { return sendID(q, after) })
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendField(q, after, func(n *Unit) string { return n.Name }, nil)
		})
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendFieldRef(q, after, func(n *Unit) *Style { return n.Style }, nil)
		})
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendList(q, after, func(n *Unit) []*FuncDecl { return n.Decls }, Key[*FuncDecl], nil)
		})
		return s.err
	},
	Receive: func(before *Unit, q *treesync.ReceiveQueue) (*Unit, error) {
		var (
			n   Unit
			err error
		)
		receiveField(q, &err, &n.ID, before.ID)
		receiveField(q, &err, &n.Name, before.Name)
		receiveField(q, &err, &n.Style, before.Style)
		receiveList(q, &err, &n.Decls, before.Decls)
		if err != nil {
			return nil, err
		}
		return &n, nil
	},
}

var funcCodec = treesync.CodecFuncs[*FuncDecl]{
	Send: func(after *FuncDecl, q *treesync.SendQueue) error {
		s := sender{q: q}
		s.do(func(q *treesync.SendQueue) error { return sendID(q, after) })
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendField(q, after, func(n *FuncDecl) string { return n.Name }, nil)
		})
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendField(q, after, func(n *FuncDecl) Visibility { return n.Visibility }, nil)
		})
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendList(q, after, func(n *FuncDecl) []*Ident { return n.Params }, Key[*Ident], nil)
		})
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendFieldRef(q, after, func(n *FuncDecl) *TypeRef { return n.Result }, nil)
		})
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendList(q, after, func(n *FuncDecl) []Expr { return n.Body }, Key[Expr], nil)
		})
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendField(q, after, func(n *FuncDecl) Position { return n.Pos }, nil)
		})
		return s.err
	},
	Receive: func(before *FuncDecl, q *treesync.ReceiveQueue) (*FuncDecl, error) {
		var (
			n   FuncDecl
			err error
		)
		receiveField(q, &err, &n.ID, before.ID)
		receiveField(q, &err, &n.Name, before.Name)
		receiveField(q, &err, &n.Visibility, before.Visibility)
		receiveList(q, &err, &n.Params, before.Params)
		receiveField(q, &err, &n.Result, before.Result)
		receiveList(q, &err, &n.Body, before.Body)
		receiveField(q, &err, &n.Pos, before.Pos)
		if err != nil {
			return nil, err
		}
		return &n, nil
	},
}

var identCodec = treesync.CodecFuncs[*Ident]{
	Send: func(after *Ident, q *treesync.SendQueue) error {
		s := sender{q: q}
		s.do(func(q *treesync.SendQueue) error { return sendID(q, after) })
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendField(q, after, func(n *Ident) string { return n.Name }, nil)
		})
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendFieldRef(q, after, func(n *Ident) *TypeRef { return n.Type }, nil)
		})
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendField(q, after, func(n *Ident) Position { return n.Pos }, nil)
		})
		return s.err
	},
	Receive: func(before *Ident, q *treesync.ReceiveQueue) (*Ident, error) {
		var (
			n   Ident
			err error
		)
		receiveField(q, &err, &n.ID, before.ID)
		receiveField(q, &err, &n.Name, before.Name)
		receiveField(q, &err, &n.Type, before.Type)
		receiveField(q, &err, &n.Pos, before.Pos)
		if err != nil {
			return nil, err
		}
		return &n, nil
	},
}

var literalCodec = treesync.CodecFuncs[*Literal]{
	Send: func(after *Literal, q *treesync.SendQueue) error {
		s := sender{q: q}
		s.do(func(q *treesync.SendQueue) error { return sendID(q, after) })
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendField(q, after, func(n *Literal) string { return n.Value }, nil)
		})
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendField(q, after, func(n *Literal) Position { return n.Pos }, nil)
		})
		return s.err
	},
	Receive: func(before *Literal, q *treesync.ReceiveQueue) (*Literal, error) {
		var (
			n   Literal
			err error
		)
		receiveField(q, &err, &n.ID, before.ID)
		receiveField(q, &err, &n.Value, before.Value)
		receiveField(q, &err, &n.Pos, before.Pos)
		if err != nil {
			return nil, err
		}
		return &n, nil
	},
}

var binaryCodec = treesync.CodecFuncs[*Binary]{
	Send: func(after *Binary, q *treesync.SendQueue) error {
		s := sender{q: q}
		s.do(func(q *treesync.SendQueue) error { return sendID(q, after) })
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendField(q, after, func(n *Binary) Operator { return n.Op }, nil)
		})
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendField(q, after, func(n *Binary) Expr { return n.Left }, nil)
		})
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendField(q, after, func(n *Binary) Expr { return n.Right }, nil)
		})
		s.do(func(q *treesync.SendQueue) error {
			return treesync.SendField(q, after, func(n *Binary) Position { return n.Pos }, nil)
		})
		return s.err
	},
	Receive: func(before *Binary, q *treesync.ReceiveQueue) (*Binary, error) {
		var (
			n   Binary
			err error
		)
		receiveField(q, &err, &n.ID, before.ID)
		receiveField(q, &err, &n.Op, before.Op)
		receiveField(q, &err, &n.Left, before.Left)
		receiveField(q, &err, &n.Right, before.Right)
		receiveField(q, &err, &n.Pos, before.Pos)
		if err != nil {
			return nil, err
		}
		return &n, nil
	},
}

var typeRefCodec = treesync.CodecFuncs[*TypeRef]{
	Send: func(after *TypeRef, q *treesync.SendQueue) error {
		if err := sendID(q, after); err != nil {
			return err
		}
		return treesync.SendField(q, after, func(n *TypeRef) string { return n.Name }, nil)
	},
	Receive: func(before *TypeRef, q *treesync.ReceiveQueue) (*TypeRef, error) {
		id, err := treesync.Receive(q, before.ID, nil)
		if err != nil {
			return nil, err
		}
		name, err := treesync.Receive(q, before.Name, nil)
		if err != nil {
			return nil, err
		}
		return &TypeRef{ID: id, Name: name}, nil
	},
}
