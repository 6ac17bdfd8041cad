package core

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestKZGSetup(t *testing.T) {
	f := testField(t, testPrime)

	ck := KZGSetup(f, 5, 11, 123456)
	if len(ck) != 5 {
		t.Fatalf("key length = %d, want 5", len(ck))
	}
	if ck[0] != 11 {
		t.Errorf("ck[0] = %d, want the generator", ck[0])
	}
	tau := uint64(123456) % (testPrime - 1)
	for i := 1; i < len(ck); i++ {
		if ck[i] != f.Mul(ck[i-1], tau) {
			t.Errorf("ck[%d] breaks the tau chain", i)
		}
	}

	vk, err := ck.VerifyingKey()
	if err != nil {
		t.Fatalf("VerifyingKey: %v", err)
	}
	if vk != ck[1] {
		t.Errorf("vk = %d, want ck[1] = %d", vk, ck[1])
	}

	if _, err := KZGSetup(f, 1, 11, 5).VerifyingKey(); !errors.Is(err, ErrKeyTooShort) {
		t.Errorf("short key: err = %v, want ErrKeyTooShort", err)
	}
}

func TestKZGCommitKeyTooShort(t *testing.T) {
	f := testField(t, testPrime)
	ck := KZGSetup(f, 3, 11, 777)

	poly := NewPolynomial(f, []uint64{1, 2, 3, 4}) // degree 3, needs 4 key elements
	if _, err := KZGCommit(f, poly, ck); !errors.Is(err, ErrKeyTooShort) {
		t.Errorf("err = %v, want ErrKeyTooShort", err)
	}
}

func TestKZGCommitLinearity(t *testing.T) {
	f := testField(t, testPrime)
	ck := KZGSetup(f, 16, 11, 98765)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	coeffs := gen.SliceOfN(10, gen.UInt64Range(0, testPrime-1))

	properties.Property("commit(a + b) = commit(a) + commit(b)", prop.ForAll(
		func(ac, bc []uint64) bool {
			a := NewPolynomial(f, ac)
			b := NewPolynomial(f, bc)
			ca, err := KZGCommit(f, a, ck)
			if err != nil {
				return false
			}
			cb, err := KZGCommit(f, b, ck)
			if err != nil {
				return false
			}
			cs, err := KZGCommit(f, a.Add(b), ck)
			if err != nil {
				return false
			}
			return cs == f.Add(ca, cb)
		}, coeffs, coeffs))

	properties.Property("commit(c * a) = c * commit(a)", prop.ForAll(
		func(ac []uint64, c uint64) bool {
			a := NewPolynomial(f, ac)
			ca, err := KZGCommit(f, a, ck)
			if err != nil {
				return false
			}
			cs, err := KZGCommit(f, a.MulScalar(c), ck)
			if err != nil {
				return false
			}
			return cs == f.Mul(c, ca)
		}, coeffs, gen.UInt64Range(0, testPrime-1)))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// The opening identity behind the final proof check: for a committed p and
// challenge point z, e(C - g*p(z), g) must match e(commit(q), vk - g*z)
// with q = (p - p(z)) / (x - z).
func TestKZGOpeningIdentity(t *testing.T) {
	f := testField(t, testPrime)
	g := uint64(11)
	ck := KZGSetup(f, 16, g, 424242)
	vk, err := ck.VerifyingKey()
	if err != nil {
		t.Fatalf("VerifyingKey: %v", err)
	}

	poly := NewPolynomial(f, []uint64{7, 0, 3, 19, 1})
	commit, err := KZGCommit(f, poly, ck)
	if err != nil {
		t.Fatalf("KZGCommit: %v", err)
	}

	z := uint64(131)
	y := poly.Evaluate(z)

	num := poly.Sub(NewConstant(f, y))
	den := NewPolynomial(f, []uint64{f.Neg(z), 1})
	q, rem, err := num.Div(den)
	if err != nil {
		t.Fatalf("Div: %v", err)
	}
	if !rem.IsZero() {
		t.Fatal("p - p(z) is not divisible by x - z")
	}
	commitQ, err := KZGCommit(f, q, ck)
	if err != nil {
		t.Fatalf("KZGCommit(q): %v", err)
	}

	left, err := EFunc(f, f.Sub(commit, f.Mul(g, y)), g, g)
	if err != nil {
		t.Fatalf("EFunc: %v", err)
	}
	right, err := EFunc(f, commitQ, f.Sub(vk, f.Mul(g, z)), g)
	if err != nil {
		t.Fatalf("EFunc: %v", err)
	}
	if left != right {
		t.Errorf("opening identity fails: %d != %d", left, right)
	}
}
