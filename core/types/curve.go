package types

import (
	"errors"

	"github.com/holiman/uint256"
)

// Curve segment packing errors.
var (
	ErrCurveDurationOverflow = errors.New("types: curve segment duration exceeds 16 bits")
	ErrCurveValueOverflow    = errors.New("types: curve segment value exceeds 240 bits")
)

// CurveSegment is one element of a price curve: the segment occupies
// Duration consecutive blocks and its WAD-scaled Value decays linearly
// to zero over that span.
type CurveSegment struct {
	Duration uint64
	Value    *uint256.Int
}

// PriceCurve is an ordered list of curve segments laid out contiguously
// from a designated target block.
type PriceCurve []CurveSegment

// maxCurveValue is the largest value representable in the packed
// segment word: 2^240 - 1.
var maxCurveValue = func() *uint256.Int {
	v := new(uint256.Int).Lsh(uint256.NewInt(1), 240)
	return v.SubUint64(v, 1)
}()

// Pack encodes the segment into a single 32-byte word: the duration in
// the top 16 bits, the value in the low 240 bits. The packed form is
// the canonical hashing form of a curve.
func (s CurveSegment) Pack() ([32]byte, error) {
	var word [32]byte
	if s.Duration > 0xffff {
		return word, ErrCurveDurationOverflow
	}
	v := s.Value
	if v == nil {
		v = new(uint256.Int)
	}
	if v.Gt(maxCurveValue) {
		return word, ErrCurveValueOverflow
	}
	word = v.Bytes32()
	word[0] = byte(s.Duration >> 8)
	word[1] = byte(s.Duration)
	return word, nil
}

// UnpackCurveSegment decodes a packed 32-byte segment word.
func UnpackCurveSegment(word [32]byte) CurveSegment {
	duration := uint64(word[0])<<8 | uint64(word[1])
	var raw [32]byte
	copy(raw[2:], word[2:])
	value := new(uint256.Int).SetBytes(raw[:])
	return CurveSegment{Duration: duration, Value: value}
}

// Pack encodes every segment of the curve. Fails on the first segment
// that does not fit the packed layout.
func (c PriceCurve) Pack() ([][32]byte, error) {
	if len(c) == 0 {
		return nil, nil
	}
	words := make([][32]byte, len(c))
	for i, seg := range c {
		w, err := seg.Pack()
		if err != nil {
			return nil, err
		}
		words[i] = w
	}
	return words, nil
}

// TotalDuration returns the number of blocks the curve spans.
func (c PriceCurve) TotalDuration() uint64 {
	var total uint64
	for _, seg := range c {
		total += seg.Duration
	}
	return total
}
