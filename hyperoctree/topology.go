package hyperoctree

import (
	"github.com/pkg/errors"
)

// EncodeTopology returns the pre-order token stream of the tree: NodeToken for a node, followed
// by the tokens of its children in increasing child index, and LeafToken for a leaf.
func (t *Tree) EncodeTopology() []uint8 {
	tokens := make([]uint8, 0, t.NumberOfLeaves()+t.NumberOfNodes())
	c := t.NewCellCursor()
	c.ToRoot()
	return encodeTokens(c, tokens)
}

func encodeTokens(c *Cursor, tokens []uint8) []uint8 {
	if c.IsLeaf() {
		return append(tokens, LeafToken)
	}
	tokens = append(tokens, NodeToken)
	for i := 0; i < c.ChildrenCount(); i++ {
		c.ToChild(i)
		tokens = encodeTokens(c, tokens)
		c.ToParent()
	}
	return tokens
}

// DecodeTopology rebuilds a tree of the given dimension from a pre-order token stream by
// subdividing every position holding a NodeToken. Leaf ids of the result follow the
// subdivision order, see LeafOrder to relate them to the encoded tree.
func DecodeTopology(dimension int, tokens []uint8) (*Tree, error) {
	t, err := NewTree(dimension)
	if err != nil {
		return nil, err
	}
	c := t.NewCellCursor()
	c.ToRoot()
	d := &topologyDecoder{tree: t, tokens: tokens}
	if err := d.decode(c); err != nil {
		return nil, err
	}
	if d.pos != len(tokens) {
		return nil, errors.Wrapf(ErrMalformedTopology, "%d trailing tokens", len(tokens)-d.pos)
	}
	return t, nil
}

type topologyDecoder struct {
	tree   *Tree
	tokens []uint8
	pos    int
}

func (d *topologyDecoder) decode(c *Cursor) error {
	if d.pos >= len(d.tokens) {
		return errors.Wrapf(ErrMalformedTopology, "truncated after %d tokens", d.pos)
	}
	token := d.tokens[d.pos]
	d.pos++
	switch token {
	case LeafToken:
		return nil
	case NodeToken:
		if c.Level()+1 >= MaxDecodeLevels {
			return errors.Wrapf(ErrMalformedTopology, "deeper than %d levels", MaxDecodeLevels)
		}
		d.tree.Subdivide(c)
		for i := 0; i < c.ChildrenCount(); i++ {
			c.ToChild(i)
			err := d.decode(c)
			c.ToParent()
			if err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Wrapf(ErrMalformedTopology, "invalid token %d at %d", token, d.pos-1)
	}
}

// LeafOrder returns the leaf ids in pre-order.
func (t *Tree) LeafOrder() []int {
	order := make([]int, 0, t.NumberOfLeaves())
	t.Walk(func(leaf *Cursor) bool {
		order = append(order, leaf.LeafID())
		return true
	})
	return order
}

// PackTokens packs a token stream at one bit per token, least significant bit first.
func PackTokens(tokens []uint8) []byte {
	packed := make([]byte, (len(tokens)+7)/8)
	for i, token := range tokens {
		if token == LeafToken {
			packed[i>>3] |= 1 << uint(i&7)
		}
	}
	return packed
}

// UnpackTokens expands count tokens packed by PackTokens.
func UnpackTokens(packed []byte, count int) ([]uint8, error) {
	if count < 0 || (count+7)/8 != len(packed) {
		return nil, errors.Wrapf(ErrMalformedTopology, "%d bytes cannot hold %d tokens", len(packed), count)
	}
	tokens := make([]uint8, count)
	for i := range tokens {
		tokens[i] = (packed[i>>3] >> uint(i&7)) & 1
	}
	return tokens, nil
}
