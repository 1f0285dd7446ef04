// Price-curve interpolation. A curve is an ordered list of
// (duration, value) segments tiling the block range that starts at the
// adjustment's target block: segment i occupies the half-open range
// [start_i, start_i+duration_i) with start_0 = targetBlock. Within a
// segment the WAD-scaled value decays linearly from the segment's own
// value down to zero over the segment's duration.
//
// The interpolator consults block numbers only, never the wall clock.
package core

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/crossfill/crossfill/core/types"
)

// Curve evaluation errors.
var (
	// ErrInvalidTargetBlockDesignation is returned when a non-empty
	// price curve is supplied without a target block to anchor it
	// (target block 0 is the sentinel for "unspecified").
	ErrInvalidTargetBlockDesignation = errors.New("curve: price curve supplied without target block designation")

	// ErrInvalidTargetBlock is returned when the evaluation block has
	// not reached the designated target block. Shared with the gate's
	// target-block check; both carry the literal block values.
	ErrInvalidTargetBlock = errors.New("core: target block not reached")
)

// EvaluateCurve returns the instantaneous WAD-scaled curve value at
// fillBlock, with the curve anchored at targetBlock.
//
// Zero-duration segments occupy no blocks and are skipped. A fill block
// past the end of the last segment evaluates to zero: each segment
// already decays to zero at its own end, so zero is the continuous
// extension of an exhausted curve. Bounding how late a fill may land is
// the fill expiry's job, not the curve's.
func EvaluateCurve(curve types.PriceCurve, targetBlock, fillBlock uint64) (*uint256.Int, error) {
	if len(curve) == 0 {
		return Wad(), nil
	}
	if targetBlock == 0 {
		return nil, ErrInvalidTargetBlockDesignation
	}
	if fillBlock < targetBlock {
		return nil, fmt.Errorf("%w: current block %d, target block %d",
			ErrInvalidTargetBlock, fillBlock, targetBlock)
	}

	offset := fillBlock - targetBlock
	for _, seg := range curve {
		if seg.Duration == 0 {
			continue
		}
		if offset >= seg.Duration {
			offset -= seg.Duration
			continue
		}
		return segmentValueAt(seg, offset)
	}
	// Curve exhausted.
	return new(uint256.Int), nil
}

// segmentValueAt computes V - mulDown(V, d*WAD/D) for a segment of
// value V and duration D at offset d, i.e. V*(D-d)/D truncated.
func segmentValueAt(seg types.CurveSegment, offset uint64) (*uint256.Int, error) {
	value := seg.Value
	if value == nil || value.IsZero() {
		return new(uint256.Int), nil
	}
	// d*WAD fits comfortably: packed durations are 16-bit.
	frac := new(uint256.Int).Mul(uint256.NewInt(offset), wad)
	frac.Div(frac, uint256.NewInt(seg.Duration))
	decay, err := MulWadDown(value, frac)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Sub(value, decay), nil
}
