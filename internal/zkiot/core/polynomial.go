package core

import (
	"fmt"
	"strings"
)

// Polynomial represents a polynomial over a prime field. Coefficients are
// stored in ascending order of degree; the zero polynomial has no
// coefficients. Leading zeros are trimmed on construction.
type Polynomial struct {
	coefficients []uint64
	field        *Field
}

// Point is an (x, y) evaluation pair used for interpolation.
type Point struct {
	X uint64
	Y uint64
}

// NewPolynomial creates a polynomial from ascending-order coefficients.
// The slice is copied, reduced, and trimmed.
func NewPolynomial(field *Field, coefficients []uint64) *Polynomial {
	coeffs := make([]uint64, len(coefficients))
	for i, c := range coefficients {
		coeffs[i] = field.Reduce(c)
	}
	for len(coeffs) > 0 && coeffs[len(coeffs)-1] == 0 {
		coeffs = coeffs[:len(coeffs)-1]
	}
	return &Polynomial{coefficients: coeffs, field: field}
}

// NewConstant creates the constant polynomial c.
func NewConstant(field *Field, c uint64) *Polynomial {
	return NewPolynomial(field, []uint64{c})
}

// NewMonomial creates c * x^degree.
func NewMonomial(field *Field, c uint64, degree int) *Polynomial {
	coeffs := make([]uint64, degree+1)
	coeffs[degree] = c
	return NewPolynomial(field, coeffs)
}

// Field returns the polynomial's field.
func (p *Polynomial) Field() *Field {
	return p.field
}

// Degree returns the degree, or -1 for the zero polynomial.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// IsZero reports whether the polynomial is identically zero.
func (p *Polynomial) IsZero() bool {
	return len(p.coefficients) == 0
}

// Coefficient returns the coefficient of x^i, zero beyond the degree.
func (p *Polynomial) Coefficient(i int) uint64 {
	if i < 0 || i >= len(p.coefficients) {
		return 0
	}
	return p.coefficients[i]
}

// Coefficients returns a copy of the ascending-order coefficients.
func (p *Polynomial) Coefficients() []uint64 {
	return append([]uint64(nil), p.coefficients...)
}

// Evaluate computes p(x) by Horner's rule.
func (p *Polynomial) Evaluate(x uint64) uint64 {
	result := uint64(0)
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		result = p.field.Add(p.field.Mul(result, x), p.coefficients[i])
	}
	return result
}

func (p *Polynomial) sameField(other *Polynomial, op string) {
	if !p.field.Equal(other.field) {
		panic(fmt.Sprintf("cannot %s polynomials from different fields", op))
	}
}

// Add returns p + other.
func (p *Polynomial) Add(other *Polynomial) *Polynomial {
	p.sameField(other, "add")
	n := max(len(p.coefficients), len(other.coefficients))
	coeffs := make([]uint64, n)
	for i := range coeffs {
		coeffs[i] = p.field.Add(p.Coefficient(i), other.Coefficient(i))
	}
	return NewPolynomial(p.field, coeffs)
}

// Sub returns p - other.
func (p *Polynomial) Sub(other *Polynomial) *Polynomial {
	p.sameField(other, "subtract")
	n := max(len(p.coefficients), len(other.coefficients))
	coeffs := make([]uint64, n)
	for i := range coeffs {
		coeffs[i] = p.field.Sub(p.Coefficient(i), other.Coefficient(i))
	}
	return NewPolynomial(p.field, coeffs)
}

// Mul returns p * other by schoolbook convolution.
func (p *Polynomial) Mul(other *Polynomial) *Polynomial {
	p.sameField(other, "multiply")
	if p.IsZero() || other.IsZero() {
		return NewPolynomial(p.field, nil)
	}
	coeffs := make([]uint64, len(p.coefficients)+len(other.coefficients)-1)
	for i, a := range p.coefficients {
		if a == 0 {
			continue
		}
		for j, b := range other.coefficients {
			coeffs[i+j] = p.field.Add(coeffs[i+j], p.field.Mul(a, b))
		}
	}
	return NewPolynomial(p.field, coeffs)
}

// MulScalar returns c * p.
func (p *Polynomial) MulScalar(c uint64) *Polynomial {
	coeffs := make([]uint64, len(p.coefficients))
	for i, a := range p.coefficients {
		coeffs[i] = p.field.Mul(a, c)
	}
	return NewPolynomial(p.field, coeffs)
}

// Div performs polynomial long division, returning quotient and remainder
// with deg(r) < deg(other). Dividing by the zero polynomial is an error.
func (p *Polynomial) Div(other *Polynomial) (*Polynomial, *Polynomial, error) {
	p.sameField(other, "divide")
	if other.IsZero() {
		return nil, nil, fmt.Errorf("polynomial division: %w", ErrDivisionByZero)
	}
	if p.Degree() < other.Degree() {
		return NewPolynomial(p.field, nil), p.Clone(), nil
	}

	leadInv, err := p.field.Inv(other.coefficients[len(other.coefficients)-1])
	if err != nil {
		return nil, nil, fmt.Errorf("polynomial division: %w", err)
	}

	rem := p.Coefficients()
	quot := make([]uint64, p.Degree()-other.Degree()+1)
	for i := len(quot) - 1; i >= 0; i-- {
		c := p.field.Mul(rem[i+other.Degree()], leadInv)
		quot[i] = c
		if c == 0 {
			continue
		}
		for j, b := range other.coefficients {
			rem[i+j] = p.field.Sub(rem[i+j], p.field.Mul(c, b))
		}
	}
	return NewPolynomial(p.field, quot), NewPolynomial(p.field, rem), nil
}

// Clone returns a deep copy.
func (p *Polynomial) Clone() *Polynomial {
	return &Polynomial{coefficients: p.Coefficients(), field: p.field}
}

// Equal reports coefficient-wise equality over the same field.
func (p *Polynomial) Equal(other *Polynomial) bool {
	if !p.field.Equal(other.field) || len(p.coefficients) != len(other.coefficients) {
		return false
	}
	for i, c := range p.coefficients {
		if c != other.coefficients[i] {
			return false
		}
	}
	return true
}

// String renders the polynomial in descending-degree order.
func (p *Polynomial) String() string {
	if p.IsZero() {
		return "0"
	}
	var terms []string
	for i := len(p.coefficients) - 1; i >= 0; i-- {
		c := p.coefficients[i]
		if c == 0 {
			continue
		}
		switch i {
		case 0:
			terms = append(terms, fmt.Sprintf("%d", c))
		case 1:
			terms = append(terms, fmt.Sprintf("%d*x", c))
		default:
			terms = append(terms, fmt.Sprintf("%d*x^%d", c, i))
		}
	}
	return strings.Join(terms, " + ")
}

// Interpolate computes the unique polynomial of degree < len(points) passing
// through the given points, using Newton divided differences. Duplicate
// x-coordinates are an error.
func Interpolate(field *Field, points []Point) (*Polynomial, error) {
	n := len(points)
	if n == 0 {
		return NewPolynomial(field, nil), nil
	}

	xs := make([]uint64, n)
	coef := make([]uint64, n)
	for i, pt := range points {
		xs[i] = field.Reduce(pt.X)
		coef[i] = field.Reduce(pt.Y)
	}

	// Divided-difference table, computed in place.
	for j := 1; j < n; j++ {
		for i := n - 1; i >= j; i-- {
			num := field.Sub(coef[i], coef[i-1])
			den := field.Sub(xs[i], xs[i-j])
			if den == 0 {
				return nil, fmt.Errorf("interpolation: duplicate x-coordinate %d: %w", xs[i], ErrDivisionByZero)
			}
			q, err := field.Div(num, den)
			if err != nil {
				return nil, fmt.Errorf("interpolation: %w", err)
			}
			coef[i] = q
		}
	}

	// Horner expansion of the Newton form.
	result := NewPolynomial(field, nil)
	for i := n - 1; i >= 0; i-- {
		factor := NewPolynomial(field, []uint64{field.Neg(xs[i]), 1})
		result = result.Mul(factor).Add(NewConstant(field, coef[i]))
	}
	return result, nil
}

// VanishingPolynomial returns the monic polynomial with the given set as its
// exact root set: prod_{s in set} (x - s).
func VanishingPolynomial(field *Field, set []uint64) *Polynomial {
	result := NewConstant(field, 1)
	for _, s := range set {
		result = result.Mul(NewPolynomial(field, []uint64{field.Neg(s), 1}))
	}
	return result
}

// FuncUEval computes u(x, y) = (x^n - y^n) / (x - y) as the power sum
// sum_{k=0}^{n-1} x^(n-1-k) * y^k, which also covers the diagonal x = y,
// where u(x, x) = n * x^(n-1).
func FuncUEval(field *Field, x, y uint64, n int) uint64 {
	x, y = field.Reduce(x), field.Reduce(y)
	if x != y {
		num := field.Sub(field.Exp(x, uint64(n)), field.Exp(y, uint64(n)))
		den := field.Sub(x, y)
		q, _ := field.Div(num, den)
		return q
	}
	return field.Mul(field.Reduce(uint64(n)), field.Exp(x, uint64(n-1)))
}

// FuncUPoly returns u(x, y) as a polynomial in x for a fixed y:
// the coefficient of x^j is y^(n-1-j).
func FuncUPoly(field *Field, y uint64, n int) *Polynomial {
	coeffs := make([]uint64, n)
	pow := uint64(1)
	for k := 0; k < n; k++ {
		coeffs[n-1-k] = pow
		pow = field.Mul(pow, y)
	}
	return NewPolynomial(field, coeffs)
}
