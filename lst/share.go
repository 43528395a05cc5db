package lst

import (
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/spacemeshos/go-treesync/codec"
	"github.com/spacemeshos/go-treesync/hash"
)

// DefaultShareCacheSize is the default number of fingerprints kept by a Sharer.
const DefaultShareCacheSize = 1 << 16

// Fingerprint returns the digest of the canonical CBOR encoding of a node and
// everything it points to. Equal fingerprints mean equal subtrees, including node ids.
func Fingerprint(v any) (hash.Digest, error) {
	data, err := codec.MarshalValue(v)
	if err != nil {
		return hash.Digest{}, err
	}
	return hash.Sum([]byte(fmt.Sprintf("%T", v)), data), nil
}

// Sharer restores structural sharing between trees loaded independently of each other:
// equal subtrees seen by the same Sharer are replaced with a single instance. Trees
// passed through one Sharer can then be diffed by identity.
type Sharer struct {
	mu     sync.Mutex
	cache  *simplelru.LRU[hash.Digest, any]
	hits   int
	misses int
}

// NewSharer creates a Sharer remembering up to size distinct subtrees.
func NewSharer(size int) (*Sharer, error) {
	cache, err := simplelru.NewLRU[hash.Digest, any](size, nil)
	if err != nil {
		return nil, fmt.Errorf("create share cache: %w", err)
	}
	return &Sharer{cache: cache}, nil
}

// Stats returns the number of subtrees that were replaced with a cached instance and
// the number of subtrees added to the cache.
func (s *Sharer) Stats() (hits, misses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses
}

// Share returns a tree equal to u, reusing the subtrees already seen.
func (s *Sharer) Share(u *Unit) (*Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		return nil, nil
	}
	return share(s, u, s.unit)
}

func share[N any](s *Sharer, n N, rebuild func(N) (N, error)) (N, error) {
	fp, err := Fingerprint(n)
	if err != nil {
		return n, err
	}
	if cached, found := s.cache.Get(fp); found {
		if c, ok := cached.(N); ok {
			s.hits++
			return c, nil
		}
	}
	r, err := rebuild(n)
	if err != nil {
		return n, err
	}
	s.misses++
	s.cache.Add(fp, r)
	return r, nil
}

func shareEach[E comparable](list []E, f func(E) (E, error)) ([]E, bool, error) {
	var out []E
	for i, e := range list {
		r, err := f(e)
		if err != nil {
			return nil, false, err
		}
		if r != e && out == nil {
			out = make([]E, len(list))
			copy(out, list[:i])
		}
		if out != nil {
			out[i] = r
		}
	}
	if out == nil {
		return list, false, nil
	}
	return out, true, nil
}

func (s *Sharer) unit(u *Unit) (*Unit, error) {
	style, err := s.style(u.Style)
	if err != nil {
		return nil, err
	}
	decls, changed, err := shareEach(u.Decls, s.funcDecl)
	if err != nil {
		return nil, err
	}
	if style == u.Style && !changed {
		return u, nil
	}
	c := *u
	c.Style = style
	c.Decls = decls
	return &c, nil
}

func (s *Sharer) style(st *Style) (*Style, error) {
	if st == nil {
		return nil, nil
	}
	return share(s, st, func(st *Style) (*Style, error) { return st, nil })
}

func (s *Sharer) typeRef(t *TypeRef) (*TypeRef, error) {
	if t == nil {
		return nil, nil
	}
	return share(s, t, func(t *TypeRef) (*TypeRef, error) { return t, nil })
}

func (s *Sharer) funcDecl(f *FuncDecl) (*FuncDecl, error) {
	if f == nil {
		return nil, nil
	}
	return share(s, f, func(f *FuncDecl) (*FuncDecl, error) {
		params, paramsChanged, err := shareEach(f.Params, s.ident)
		if err != nil {
			return nil, err
		}
		result, err := s.typeRef(f.Result)
		if err != nil {
			return nil, err
		}
		body, bodyChanged, err := shareEach(f.Body, s.expr)
		if err != nil {
			return nil, err
		}
		if !paramsChanged && !bodyChanged && result == f.Result {
			return f, nil
		}
		c := *f
		c.Params = params
		c.Result = result
		c.Body = body
		return &c, nil
	})
}

func (s *Sharer) ident(id *Ident) (*Ident, error) {
	if id == nil {
		return nil, nil
	}
	return share(s, id, func(id *Ident) (*Ident, error) {
		typ, err := s.typeRef(id.Type)
		if err != nil || typ == id.Type {
			return id, err
		}
		return &Ident{ID: id.ID, Name: id.Name, Type: typ, Pos: id.Pos}, nil
	})
}

func (s *Sharer) expr(e Expr) (Expr, error) {
	var (
		r   Expr
		err error
	)
	switch e := e.(type) {
	case nil:
		return nil, nil
	case *Ident:
		r, err = s.ident(e)
	case *Literal:
		r, err = share(s, e, func(l *Literal) (*Literal, error) { return l, nil })
	case *Binary:
		r, err = share(s, e, func(b *Binary) (*Binary, error) {
			left, err := s.expr(b.Left)
			if err != nil {
				return nil, err
			}
			right, err := s.expr(b.Right)
			if err != nil {
				return nil, err
			}
			if left == b.Left && right == b.Right {
				return b, nil
			}
			return b.WithOperands(left, right), nil
		})
	default:
		return nil, fmt.Errorf("%w: %T", ErrBadExpr, e)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}
