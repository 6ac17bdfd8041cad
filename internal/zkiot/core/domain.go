package core

import (
	"errors"
	"fmt"
)

// ErrInvalidDomain is returned when an evaluation domain cannot be built
// from the given field and generator.
var ErrInvalidDomain = errors.New("invalid evaluation domain")

// Domain is a multiplicative evaluation domain: the cyclic group generated by
// w = g^((p-1)/size), enumerated as w^0, w^1, ..., w^(size-1).
type Domain struct {
	field     *Field
	generator uint64
	elements  []uint64
	index     map[uint64]int
}

// NewDomain builds the domain of the given size inside GF(p). The size must
// divide p-1 and g must generate a subgroup of order divisible by size,
// otherwise the enumerated powers collide and the domain is rejected.
func NewDomain(field *Field, size int, g uint64) (*Domain, error) {
	if size <= 0 {
		return nil, fmt.Errorf("domain size must be positive, got %d: %w", size, ErrInvalidDomain)
	}
	p := field.Modulus()
	if g%p == 0 {
		return nil, fmt.Errorf("domain generator must be non-zero: %w", ErrInvalidDomain)
	}
	if (p-1)%uint64(size) != 0 {
		return nil, fmt.Errorf("domain size %d does not divide p-1 = %d: %w", size, p-1, ErrInvalidDomain)
	}

	w := field.Exp(g, (p-1)/uint64(size))
	elements := make([]uint64, size)
	index := make(map[uint64]int, size)
	acc := uint64(1)
	for i := 0; i < size; i++ {
		if _, seen := index[acc]; seen {
			return nil, fmt.Errorf("generator %d yields only %d distinct elements, need %d: %w", g, i, size, ErrInvalidDomain)
		}
		elements[i] = acc
		index[acc] = i
		acc = field.Mul(acc, w)
	}
	return &Domain{field: field, generator: w, elements: elements, index: index}, nil
}

// Size returns the number of domain elements.
func (d *Domain) Size() int {
	return len(d.elements)
}

// Field returns the underlying field.
func (d *Domain) Field() *Field {
	return d.field
}

// Generator returns the subgroup generator w.
func (d *Domain) Generator() uint64 {
	return d.generator
}

// Element returns the i-th domain element w^i.
func (d *Domain) Element(i int) uint64 {
	return d.elements[i]
}

// Elements returns a copy of the enumerated domain.
func (d *Domain) Elements() []uint64 {
	return append([]uint64(nil), d.elements...)
}

// Contains reports whether v lies in the domain.
func (d *Domain) Contains(v uint64) bool {
	_, ok := d.index[d.field.Reduce(v)]
	return ok
}

// IndexOf returns the discrete position of v in the enumeration.
func (d *Domain) IndexOf(v uint64) (int, bool) {
	i, ok := d.index[d.field.Reduce(v)]
	return i, ok
}

// Vanishing returns x^size - 1, which vanishes exactly on the domain since
// the domain is a full multiplicative subgroup.
func (d *Domain) Vanishing() *Polynomial {
	coeffs := make([]uint64, len(d.elements)+1)
	coeffs[0] = d.field.Neg(1)
	coeffs[len(d.elements)] = 1
	return NewPolynomial(d.field, coeffs)
}

// EvalVanishing computes x^size - 1 at a point without materializing the
// polynomial.
func (d *Domain) EvalVanishing(x uint64) uint64 {
	return d.field.Sub(d.field.Exp(x, uint64(len(d.elements))), 1)
}
