// Package lst implements a small language syntax tree used as the sample object model
// for tree sync. Nodes are immutable once built: edits produce new nodes and reuse the
// unchanged ones, so an edited tree shares structure with its previous version.
package lst

import (
	"slices"

	"github.com/google/uuid"
)

// Node is implemented by all tree nodes carrying an identity.
type Node interface {
	NodeID() uuid.UUID
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Position in the source text.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Style holds the formatting settings of a unit. Units may share the same Style.
type Style struct {
	Indent int  `json:"indent"`
	Tabs   bool `json:"tabs"`
}

// TypeRef names a type. Identifiers referring to the same type share the TypeRef.
type TypeRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Unit is the root of a tree.
type Unit struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Style *Style      `json:"style,omitempty"`
	Decls []*FuncDecl `json:"decls,omitempty"`
}

// FuncDecl is a function declaration.
type FuncDecl struct {
	ID         uuid.UUID
	Name       string
	Visibility Visibility
	Params     []*Ident
	Result     *TypeRef
	Body       []Expr
	Pos        Position
}

type Ident struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Type *TypeRef  `json:"type,omitempty"`
	Pos  Position  `json:"pos"`
}

type Literal struct {
	ID    uuid.UUID `json:"id"`
	Value string    `json:"value"`
	Pos   Position  `json:"pos"`
}

type Binary struct {
	ID    uuid.UUID
	Op    Operator
	Left  Expr
	Right Expr
	Pos   Position
}

func (n *TypeRef) NodeID() uuid.UUID  { return n.ID }
func (n *Unit) NodeID() uuid.UUID     { return n.ID }
func (n *FuncDecl) NodeID() uuid.UUID { return n.ID }
func (n *Ident) NodeID() uuid.UUID    { return n.ID }
func (n *Literal) NodeID() uuid.UUID  { return n.ID }
func (n *Binary) NodeID() uuid.UUID   { return n.ID }

func (*Ident) exprNode()   {}
func (*Literal) exprNode() {}
func (*Binary) exprNode()  {}

// Key returns the identity key used to match list elements across versions.
func Key[N Node](n N) any {
	return n.NodeID()
}

func NewUnit(name string, decls ...*FuncDecl) *Unit {
	return &Unit{ID: uuid.New(), Name: name, Decls: decls}
}

func NewFunc(name string, params []*Ident, result *TypeRef, body ...Expr) *FuncDecl {
	return &FuncDecl{ID: uuid.New(), Name: name, Params: params, Result: result, Body: body}
}

func NewTypeRef(name string) *TypeRef {
	return &TypeRef{ID: uuid.New(), Name: name}
}

func NewIdent(name string, typ *TypeRef) *Ident {
	return &Ident{ID: uuid.New(), Name: name, Type: typ}
}

func NewLiteral(value string) *Literal {
	return &Literal{ID: uuid.New(), Value: value}
}

func NewBinary(op Operator, left, right Expr) *Binary {
	return &Binary{ID: uuid.New(), Op: op, Left: left, Right: right}
}

// WithName returns a copy of the unit with the name replaced.
func (n *Unit) WithName(name string) *Unit {
	c := *n
	c.Name = name
	return &c
}

func (n *Unit) WithStyle(s *Style) *Unit {
	c := *n
	c.Style = s
	return &c
}

// WithDecls returns a copy of the unit with the declarations replaced.
func (n *Unit) WithDecls(decls ...*FuncDecl) *Unit {
	c := *n
	c.Decls = decls
	return &c
}

// ReplaceDecl returns a copy of the unit with the i-th declaration replaced.
// A nil decl removes it.
func (n *Unit) ReplaceDecl(i int, decl *FuncDecl) *Unit {
	decls := slices.Clone(n.Decls)
	if decl == nil {
		decls = slices.Delete(decls, i, i+1)
	} else {
		decls[i] = decl
	}
	return n.WithDecls(decls...)
}

func (n *FuncDecl) WithName(name string) *FuncDecl {
	c := *n
	c.Name = name
	return &c
}

func (n *FuncDecl) WithVisibility(v Visibility) *FuncDecl {
	c := *n
	c.Visibility = v
	return &c
}

func (n *FuncDecl) WithParams(params ...*Ident) *FuncDecl {
	c := *n
	c.Params = params
	return &c
}

func (n *FuncDecl) WithResult(result *TypeRef) *FuncDecl {
	c := *n
	c.Result = result
	return &c
}

func (n *FuncDecl) WithBody(body ...Expr) *FuncDecl {
	c := *n
	c.Body = body
	return &c
}

func (n *Ident) WithName(name string) *Ident {
	c := *n
	c.Name = name
	return &c
}

func (n *Literal) WithValue(value string) *Literal {
	c := *n
	c.Value = value
	return &c
}

func (n *Binary) WithOperands(left, right Expr) *Binary {
	c := *n
	c.Left = left
	c.Right = right
	return &c
}
