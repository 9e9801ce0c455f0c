// Package leafdata stores the attributes of the leaves of a hyperoctree. Every array holds one
// tuple per leaf and is addressed by leaf id.
package leafdata

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Array is a named array of fixed-size float64 tuples.
type Array struct {
	name       string
	components int
	values     []float64
}

// NewArray returns an empty array whose tuples have the given number of components.
func NewArray(name string, components int) *Array {
	if components < 1 {
		panic("pre: positive_components")
	}
	return &Array{name: name, components: components}
}

// Name returns the name of the array.
func (a *Array) Name() string {
	return a.name
}

// Components returns the number of values per tuple.
func (a *Array) Components() int {
	return a.components
}

// Len returns the number of tuples.
func (a *Array) Len() int {
	return len(a.values) / a.components
}

// InsertTuple writes tuple at index i, growing the array with zero tuples when i is past its end.
func (a *Array) InsertTuple(i int, tuple ...float64) {
	if i < 0 {
		panic("pre: positive_index")
	}
	if len(tuple) != a.components {
		panic("pre: matching_components")
	}
	if need := (i + 1) * a.components; need > len(a.values) {
		a.values = append(a.values, make([]float64, need-len(a.values))...)
	}
	copy(a.values[i*a.components:], tuple)
}

// InsertNextTuple appends tuple and returns its index.
func (a *Array) InsertNextTuple(tuple ...float64) int {
	i := a.Len()
	a.InsertTuple(i, tuple...)
	return i
}

// InsertValue writes the first component of tuple i.
func (a *Array) InsertValue(i int, v float64) {
	tuple := make([]float64, a.components)
	if i < a.Len() {
		copy(tuple, a.Tuple(i))
	}
	tuple[0] = v
	a.InsertTuple(i, tuple...)
}

// Tuple returns tuple i. The returned slice aliases the array.
func (a *Array) Tuple(i int) []float64 {
	return a.values[i*a.components : (i+1)*a.components]
}

// Value returns the first component of tuple i.
func (a *Array) Value(i int) float64 {
	return a.values[i*a.components]
}

// Values returns the raw values, tuple after tuple. The returned slice aliases the array.
func (a *Array) Values() []float64 {
	return a.values
}

// SetValues replaces the raw values.
func (a *Array) SetValues(values []float64) error {
	if len(values)%a.components != 0 {
		return errors.Errorf("%d values do not make %d-component tuples for %q", len(values), a.components, a.name)
	}
	a.values = values
	return nil
}

// Permute returns a new array whose tuple i is tuple order[i] of a.
func (a *Array) Permute(order []int) *Array {
	result := &Array{name: a.name, components: a.components, values: make([]float64, 0, len(order)*a.components)}
	for _, i := range order {
		result.values = append(result.values, a.Tuple(i)...)
	}
	return result
}

// Copy returns an independent copy of the array.
func (a *Array) Copy() *Array {
	return &Array{name: a.name, components: a.components, values: append([]float64(nil), a.values...)}
}

// Store is a set of named leaf arrays, one of which may be flagged as the active scalars.
type Store struct {
	arrays  map[string]*Array
	scalars string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{arrays: map[string]*Array{}}
}

// AddArray adds or replaces an array. The first array added becomes the active scalars.
func (s *Store) AddArray(a *Array) {
	s.arrays[a.name] = a
	if s.scalars == "" {
		s.scalars = a.name
	}
}

// Array returns the array with the given name.
func (s *Store) Array(name string) (*Array, bool) {
	a, ok := s.arrays[name]
	return a, ok
}

// Names returns the names of the arrays in lexical order.
func (s *Store) Names() []string {
	names := lo.Keys(s.arrays)
	sort.Strings(names)
	return names
}

// Arrays returns the arrays in lexical order of their names.
func (s *Store) Arrays() []*Array {
	return lo.Map(s.Names(), func(name string, _ int) *Array {
		return s.arrays[name]
	})
}

// Scalars returns the active scalars, or nil.
func (s *Store) Scalars() *Array {
	return s.arrays[s.scalars]
}

// SetScalars flags an existing array as the active scalars.
func (s *Store) SetScalars(name string) error {
	if _, ok := s.arrays[name]; !ok {
		return errors.Errorf("no leaf array named %q", name)
	}
	s.scalars = name
	return nil
}

// ScalarsName returns the name of the active scalars.
func (s *Store) ScalarsName() string {
	return s.scalars
}

// NumberOfTuples returns the length of the longest array.
func (s *Store) NumberOfTuples() int {
	return lo.Max(lo.Map(lo.Values(s.arrays), func(a *Array, _ int) int {
		return a.Len()
	}))
}

// Validate checks that every array holds exactly n tuples.
func (s *Store) Validate(n int) error {
	for _, a := range s.Arrays() {
		if a.Len() != n {
			return errors.Errorf("leaf array %q has %d tuples, want %d", a.name, a.Len(), n)
		}
	}
	return nil
}

// Permute returns a store whose arrays are permuted by order, see Array.Permute.
func (s *Store) Permute(order []int) *Store {
	result := &Store{arrays: make(map[string]*Array, len(s.arrays)), scalars: s.scalars}
	for name, a := range s.arrays {
		result.arrays[name] = a.Permute(order)
	}
	return result
}

// Copy returns an independent copy of the store.
func (s *Store) Copy() *Store {
	result := &Store{arrays: make(map[string]*Array, len(s.arrays)), scalars: s.scalars}
	for name, a := range s.arrays {
		result.arrays[name] = a.Copy()
	}
	return result
}
