package hyperoctree

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/golang/geo/r3"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/hyperoctree/leafdata"
	"go.viam.com/hyperoctree/logging"
)

// FileMagic starts every hyperoctree dataset file. It is followed by a snappy framed stream
// holding one cbor encoded fileBody.
const FileMagic = "HOT1"

const fileVersion = 1

type fileArray struct {
	Name       string    `cbor:"name"`
	Components int       `cbor:"components"`
	Values     []float64 `cbor:"values"`
}

type fileBody struct {
	Version   int         `cbor:"version"`
	Dimension int         `cbor:"dimension"`
	Origin    [3]float64  `cbor:"origin"`
	Size      [3]float64  `cbor:"size"`
	Tokens    int         `cbor:"tokens"`
	Topology  []byte      `cbor:"topology"`
	Scalars   string      `cbor:"scalars,omitempty"`
	Arrays    []fileArray `cbor:"arrays"`
}

// decodeOrder returns, for every leaf id of the tree rebuilt from the topology of t, the id of
// the matching leaf of t.
func (t *Tree) decodeOrder(tokens []uint8) ([]int, error) {
	rebuilt, err := DecodeTopology(t.dimension, tokens)
	if err != nil {
		return nil, err
	}
	ours := t.LeafOrder()
	theirs := rebuilt.LeafOrder()
	order := make([]int, len(ours))
	for i, id := range theirs {
		order[id] = ours[i]
	}
	return order, nil
}

// Encode writes the tree and its leaf arrays. Arrays are stored in the leaf order the decoder
// will assign, so that Decode restores every tuple on the same leaf.
func (t *Tree) Encode(w io.Writer) (err error) {
	if err := t.leafData.Validate(t.NumberOfLeaves()); err != nil {
		return err
	}
	tokens := t.EncodeTopology()
	order, err := t.decodeOrder(tokens)
	if err != nil {
		return err
	}
	body := fileBody{
		Version:   fileVersion,
		Dimension: t.dimension,
		Origin:    [3]float64{t.origin.X, t.origin.Y, t.origin.Z},
		Size:      [3]float64{t.size.X, t.size.Y, t.size.Z},
		Tokens:    len(tokens),
		Topology:  PackTokens(tokens),
	}
	if t.leafData.Scalars() != nil {
		body.Scalars = t.leafData.ScalarsName()
	}
	for _, a := range t.leafData.Permute(order).Arrays() {
		body.Arrays = append(body.Arrays, fileArray{Name: a.Name(), Components: a.Components(), Values: a.Values()})
	}

	if _, err := io.WriteString(w, FileMagic); err != nil {
		return err
	}
	sw := snappy.NewBufferedWriter(w)
	defer func() {
		err = multierr.Combine(err, sw.Close())
	}()
	return cbor.NewEncoder(sw).Encode(body)
}

// Decode reads a tree written by Encode.
func Decode(r io.Reader) (*Tree, error) {
	magic := make([]byte, len(FileMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, errors.Wrap(err, "reading magic")
	}
	if !bytes.Equal(magic, []byte(FileMagic)) {
		return nil, errors.Errorf("not a hyperoctree file, magic is %q", magic)
	}
	var body fileBody
	if err := cbor.NewDecoder(snappy.NewReader(r)).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decoding body")
	}
	if body.Version != fileVersion {
		return nil, errors.Errorf("unsupported file version %d", body.Version)
	}
	if !validDimension(body.Dimension) {
		return nil, errors.Wrapf(ErrInvalidDimension, "got %d", body.Dimension)
	}
	tokens, err := UnpackTokens(body.Topology, body.Tokens)
	if err != nil {
		return nil, err
	}
	t, err := DecodeTopology(body.Dimension, tokens)
	if err != nil {
		return nil, err
	}
	t.SetOrigin(r3.Vector{X: body.Origin[0], Y: body.Origin[1], Z: body.Origin[2]})
	t.SetSize(r3.Vector{X: body.Size[0], Y: body.Size[1], Z: body.Size[2]})

	store := leafdata.NewStore()
	for _, fa := range body.Arrays {
		if fa.Components < 1 {
			return nil, errors.Errorf("leaf array %q has %d components", fa.Name, fa.Components)
		}
		a := leafdata.NewArray(fa.Name, fa.Components)
		if err := a.SetValues(fa.Values); err != nil {
			return nil, err
		}
		store.AddArray(a)
	}
	if body.Scalars != "" {
		if err := store.SetScalars(body.Scalars); err != nil {
			return nil, err
		}
	}
	if err := store.Validate(t.NumberOfLeaves()); err != nil {
		return nil, err
	}
	t.SetLeafData(store)
	return t, nil
}

// WriteToFile writes the tree to a file, see Encode. A nil logger means logging.Global().
func WriteToFile(t *Tree, fn string, logger logging.Logger) (err error) {
	if logger == nil {
		logger = logging.Global()
	}
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	bw := bufio.NewWriter(f)
	if err := t.Encode(bw); err != nil {
		return errors.Wrapf(err, "writing %q", fn)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	logger.Debugw("wrote hyperoctree", "file", fn, "leaves", t.NumberOfLeaves(), "levels", t.NumberOfLevels())
	return nil
}

// NewFromFile reads a tree from a file, see Decode. A nil logger means logging.Global().
func NewFromFile(fn string, logger logging.Logger) (*Tree, error) {
	if logger == nil {
		logger = logging.Global()
	}
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Warnw("closing hyperoctree file", "file", fn, "error", cerr)
		}
	}()
	t, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", fn)
	}
	logger.Debugw("read hyperoctree", "file", fn, "leaves", t.NumberOfLeaves(), "levels", t.NumberOfLevels())
	return t, nil
}
