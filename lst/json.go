package lst

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// ErrBadExpr is returned when decoding an expression that doesn't hold exactly one node.
var ErrBadExpr = errors.New("bad expression")

// exprJSON holds exactly one expression node, the key naming its kind.
type exprJSON struct {
	Ident   *Ident   `json:"ident,omitempty"`
	Literal *Literal `json:"literal,omitempty"`
	Binary  *Binary  `json:"binary,omitempty"`
}

func wrapExpr(e Expr) *exprJSON {
	switch e := e.(type) {
	case nil:
		return nil
	case *Ident:
		return &exprJSON{Ident: e}
	case *Literal:
		return &exprJSON{Literal: e}
	case *Binary:
		return &exprJSON{Binary: e}
	default:
		panic(fmt.Sprintf("BUG: unexpected expression type %T", e))
	}
}

func (j *exprJSON) expr() (Expr, error) {
	if j == nil {
		return nil, nil
	}
	var (
		e     Expr
		count int
	)
	if j.Ident != nil {
		e = j.Ident
		count++
	}
	if j.Literal != nil {
		e = j.Literal
		count++
	}
	if j.Binary != nil {
		e = j.Binary
		count++
	}
	if count != 1 {
		return nil, fmt.Errorf("%w: %d nodes", ErrBadExpr, count)
	}
	return e, nil
}

type funcJSON struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	Visibility Visibility  `json:"visibility"`
	Params     []*Ident    `json:"params,omitempty"`
	Result     *TypeRef    `json:"result,omitempty"`
	Body       []*exprJSON `json:"body,omitempty"`
	Pos        Position    `json:"pos"`
}

// MarshalJSON implements json.Marshaler.
func (n *FuncDecl) MarshalJSON() ([]byte, error) {
	j := funcJSON{
		ID:         n.ID,
		Name:       n.Name,
		Visibility: n.Visibility,
		Params:     n.Params,
		Result:     n.Result,
		Pos:        n.Pos,
	}
	for _, e := range n.Body {
		j.Body = append(j.Body, wrapExpr(e))
	}
	return json.Marshal(&j)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *FuncDecl) UnmarshalJSON(data []byte) error {
	var j funcJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*n = FuncDecl{
		ID:         j.ID,
		Name:       j.Name,
		Visibility: j.Visibility,
		Params:     j.Params,
		Result:     j.Result,
		Pos:        j.Pos,
	}
	for i, ej := range j.Body {
		e, err := ej.expr()
		if err != nil {
			return fmt.Errorf("function %s: body[%d]: %w", j.Name, i, err)
		}
		n.Body = append(n.Body, e)
	}
	return nil
}

type binaryJSON struct {
	ID    uuid.UUID `json:"id"`
	Op    Operator  `json:"op"`
	Left  *exprJSON `json:"left,omitempty"`
	Right *exprJSON `json:"right,omitempty"`
	Pos   Position  `json:"pos"`
}

// MarshalJSON implements json.Marshaler.
func (n *Binary) MarshalJSON() ([]byte, error) {
	return json.Marshal(&binaryJSON{
		ID:    n.ID,
		Op:    n.Op,
		Left:  wrapExpr(n.Left),
		Right: wrapExpr(n.Right),
		Pos:   n.Pos,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Binary) UnmarshalJSON(data []byte) error {
	var j binaryJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	left, err := j.Left.expr()
	if err != nil {
		return fmt.Errorf("left operand: %w", err)
	}
	right, err := j.Right.expr()
	if err != nil {
		return fmt.Errorf("right operand: %w", err)
	}
	*n = Binary{ID: j.ID, Op: j.Op, Left: left, Right: right, Pos: j.Pos}
	return nil
}

// Load decodes a unit from its JSON form. Nodes shared in the original tree, such as
// type references, come back as separate copies; use a Sharer to restore the sharing.
// The document is checked against Schema before decoding.
func Load(r io.Reader) (*Unit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read unit: %w", err)
	}
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}
	var u Unit
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&u); err != nil {
		return nil, fmt.Errorf("decode unit: %w", err)
	}
	return &u, nil
}

// Save writes the JSON form of the unit.
func Save(w io.Writer, u *Unit) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(u); err != nil {
		return fmt.Errorf("encode unit: %w", err)
	}
	return nil
}
