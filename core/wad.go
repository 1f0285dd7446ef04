// Fixed-point arithmetic on the WAD scale (1e18 == 1.0). All scaling
// factors and multipliers in the settlement core are WAD-scaled
// unsigned 256-bit integers; the rounding direction of every product is
// chosen by the caller so outcomes bias in the sponsor's favor.
package core

import (
	"errors"

	"github.com/holiman/uint256"
)

// ErrArithmeticOverflow is returned when an intermediate 256-bit
// product overflows before division by WAD.
var ErrArithmeticOverflow = errors.New("fixmath: 256-bit multiplication overflow")

// wad is the fixed-point unit, 1e18. Never used as a mutation receiver.
var wad = uint256.NewInt(1_000_000_000_000_000_000)

// maxUint256 is 2^256 - 1.
var maxUint256 = func() *uint256.Int {
	v := new(uint256.Int)
	return v.Not(v)
}()

// Wad returns a fresh copy of the WAD unit (1e18).
func Wad() *uint256.Int {
	return new(uint256.Int).Set(wad)
}

// MulWadDown computes floor(a*b / 1e18). Fails with
// ErrArithmeticOverflow if a*b exceeds 256 bits before the division.
func MulWadDown(a, b *uint256.Int) (*uint256.Int, error) {
	p, err := mulCheck(a, b)
	if err != nil {
		return nil, err
	}
	return p.Div(p, wad), nil
}

// MulWadUp computes ceil(a*b / 1e18). Fails with ErrArithmeticOverflow
// if a*b exceeds 256 bits before the division.
func MulWadUp(a, b *uint256.Int) (*uint256.Int, error) {
	p, err := mulCheck(a, b)
	if err != nil {
		return nil, err
	}
	q, r := new(uint256.Int), new(uint256.Int)
	q.DivMod(p, wad, r)
	if !r.IsZero() {
		// q < 2^256/1e18, so the increment cannot wrap.
		q.AddUint64(q, 1)
	}
	return q, nil
}

// mulCheck returns a*b or ErrArithmeticOverflow if the full product
// does not fit 256 bits.
func mulCheck(a, b *uint256.Int) (*uint256.Int, error) {
	if a.IsZero() || b.IsZero() {
		return new(uint256.Int), nil
	}
	limit := new(uint256.Int).Div(maxUint256, b)
	if a.Gt(limit) {
		return nil, ErrArithmeticOverflow
	}
	return new(uint256.Int).Mul(a, b), nil
}
