package stepkey

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// First returns the conventional opening key of an empty section: the
// lowest fraction expressible at the given width, e.g. First(2, 3) is
// 2.001. Widths below MinFractionDigits fall back to the default.
func First(major int64, width int) Key {
	if width < MinFractionDigits {
		width = MinFractionDigits
	}
	return Key{major: major, frac: strings.Repeat("0", width-1) + "1"}
}

// Midpoint returns a key strictly between a and b. Both keys must share
// a major part and satisfy a < b. The result stays at the wider of the
// two widths when a gap exists there; when a and b are adjacent at that
// width the result grows by exactly one digit, so repeated insertion
// between neighbors always succeeds.
//
//	Midpoint(1.001, 1.005) = 1.003
//	Midpoint(1.001, 1.002) = 1.0015
func Midpoint(a, b Key) (Key, error) {
	if a.major != b.major {
		return Key{}, fmt.Errorf("midpoint of %s and %s: %w", a, b, ErrMajorMismatch)
	}
	if a.Compare(b) >= 0 {
		return Key{}, fmt.Errorf("midpoint of %s and %s: %w", a, b, ErrNotOrdered)
	}
	width := max(a.Precision(), b.Precision())
	mid, err := midpointAt(a, b, width)
	if err == nil {
		return mid, nil
	}
	var adjacent *AdjacentKeysError
	if !errors.As(err, &adjacent) {
		return Key{}, err
	}
	// One more digit turns a gap of one into a gap of ten.
	return midpointAt(a, b, width+1)
}

// midpointAt computes the floor midpoint of the two fraction
// coefficients at a fixed width. It fails with *AdjacentKeysError when
// the coefficients differ by less than two, meaning no key exists
// between them at that width.
func midpointAt(a, b Key, width int) (Key, error) {
	ac, bc := coeff(a, width), coeff(b, width)
	two := new(apd.BigInt).SetInt64(2)
	diff := new(apd.BigInt).Sub(bc, ac)
	if diff.Cmp(two) < 0 {
		return Key{}, &AdjacentKeysError{A: a, B: b, Precision: width}
	}
	sum := new(apd.BigInt).Add(ac, bc)
	return fromCoeff(a.major, new(apd.BigInt).Quo(sum, two), width), nil
}

// AppendAfter returns the key that follows k when appending at the tail
// of a section. The fraction is incremented in its last digit, and the
// width grows by one digit only when the increment would overflow it.
// Bare majors gain a fraction at the default width.
//
//	AppendAfter(1.001) = 1.002
//	AppendAfter(1.999) = 1.9991
//	AppendAfter(2)     = 2.001
func AppendAfter(k Key) Key {
	width := k.Precision()
	if width == 0 {
		width = MinFractionDigits
	}
	one := new(apd.BigInt).SetInt64(1)
	next := new(apd.BigInt).Add(coeff(k, width), one)
	if next.Cmp(pow10(width)) >= 0 {
		width++
		next = new(apd.BigInt).Add(coeff(k, width), one)
	}
	return fromCoeff(k.major, next, width)
}

// WithPrecision re-renders k at exactly the given fraction width, which
// must be zero or at least MinFractionDigits. Widening pads with zeros.
// Narrowing rounds half away from zero and fails with
// *PrecisionLossError when rounding would carry the fraction into the
// next major, as with 1.9995 at width 3.
func (k Key) WithPrecision(width int) (Key, error) {
	if width != 0 && width < MinFractionDigits {
		return Key{}, &PrecisionLossError{
			Key:       k,
			Precision: width,
			Reason:    fmt.Sprintf("fraction width must be 0 or at least %d", MinFractionDigits),
		}
	}
	if width >= k.Precision() {
		return fromCoeff(k.major, coeff(k, width), width), nil
	}

	scale := pow10(k.Precision() - width)
	rem := new(apd.BigInt)
	quo, _ := new(apd.BigInt).QuoRem(coeff(k, k.Precision()), scale, rem)
	if doubled := new(apd.BigInt).Add(rem, rem); doubled.Cmp(scale) >= 0 {
		quo.Add(quo, new(apd.BigInt).SetInt64(1))
	}
	if quo.Cmp(pow10(width)) >= 0 {
		return Key{}, &PrecisionLossError{
			Key:       k,
			Precision: width,
			Reason:    "fraction rounds past the section boundary",
		}
	}
	return fromCoeff(k.major, quo, width), nil
}

// coeff returns the fraction of k scaled to the given width as an
// integer coefficient: coeff(1.25, 3) is 250.
func coeff(k Key, width int) *apd.BigInt {
	digits := k.frac
	if len(digits) < width {
		digits += strings.Repeat("0", width-len(digits))
	}
	if digits == "" {
		return new(apd.BigInt)
	}
	n, ok := new(apd.BigInt).SetString(digits, 10)
	if !ok {
		// digits come from a parsed key, so this cannot happen
		panic("stepkey: invalid fraction digits " + digits)
	}
	return n
}

// fromCoeff builds a key from a fraction coefficient at the given
// width. The coefficient must satisfy 0 <= c < 10^width.
func fromCoeff(major int64, c *apd.BigInt, width int) Key {
	if width == 0 {
		return Key{major: major}
	}
	s := c.String()
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return Key{major: major, frac: s}
}

func pow10(n int) *apd.BigInt {
	ten := new(apd.BigInt).SetInt64(10)
	return new(apd.BigInt).Exp(ten, new(apd.BigInt).SetInt64(int64(n)), nil)
}
