// Amount derivation: converts a static commitment (minimum fill,
// maximum claims) into the pair of live amounts a settlement executes
// at. Two mutually exclusive scaling mechanisms produce a WAD-scaled
// multiplier m:
//
//   - priority-fee scaling (empty curve): the per-base-fee-unit rate
//     (scalingFactor - WAD) multiplies the raw priority-fee excess,
//   - curve scaling (non-empty curve): m is exactly the interpolated
//     curve value at the fill block; scalingFactor and the baseline
//     fee are not consulted.
//
// Whichever side is not held at its extreme moves, always against the
// filler, with rounding to match: claims round down (sponsor keeps the
// dust), fills round up (filler pays the dust).
package core

import (
	"github.com/holiman/uint256"

	"github.com/crossfill/crossfill/core/types"
)

// DeriveParams are the inputs to DeriveAmounts. CurrentPriorityFee is
// the caller's effective priority fee for the pending transaction
// (gas price minus base fee); it is only consulted when PriceCurve is
// empty.
type DeriveParams struct {
	MaxClaimAmounts     []*uint256.Int
	PriceCurve          types.PriceCurve
	TargetBlock         uint64
	FillBlock           uint64
	MinimumFillAmount   *uint256.Int
	CurrentPriorityFee  *uint256.Int
	BaselinePriorityFee *uint256.Int
	ScalingFactor       *uint256.Int
}

// DeriveAmounts computes the fill amount the filler must deliver and
// the claim amounts the filler may take, per the active scaling
// mechanism. Pure; callable standalone for off-chain quoting.
func DeriveAmounts(p DeriveParams) (*uint256.Int, []*uint256.Int, error) {
	m, err := DeriveMultiplier(p)
	if err != nil {
		return nil, nil, err
	}
	fillAmount, err := ScaleFillAmount(p.MinimumFillAmount, m)
	if err != nil {
		return nil, nil, err
	}
	claimAmounts, err := ScaleClaimAmounts(p.MaxClaimAmounts, m)
	if err != nil {
		return nil, nil, err
	}
	return fillAmount, claimAmounts, nil
}

// DeriveMultiplier computes the WAD-scaled multiplier m shared by the
// fill and claim sides.
func DeriveMultiplier(p DeriveParams) (*uint256.Int, error) {
	if len(p.PriceCurve) > 0 {
		return EvaluateCurve(p.PriceCurve, p.TargetBlock, p.FillBlock)
	}
	return priorityFeeMultiplier(p.CurrentPriorityFee, p.BaselinePriorityFee, p.ScalingFactor)
}

// priorityFeeMultiplier computes WAD + (scalingFactor - WAD) * excess,
// where excess = max(0, current - baseline) in raw base-fee units. The
// rate multiplies the excess directly, not through WAD multiplication:
// scalingFactor is a per-wei-of-excess rate and must sit extremely
// close to WAD for realistic excess magnitudes.
//
// On the reducing side the multiplier saturates at zero rather than
// wrapping; claims cannot go below nothing.
func priorityFeeMultiplier(current, baseline, scalingFactor *uint256.Int) (*uint256.Int, error) {
	sf := scalingFactor
	if sf == nil {
		sf = wad
	}
	if sf.Eq(wad) {
		return Wad(), nil
	}

	excess := new(uint256.Int)
	if current != nil {
		excess.Set(current)
	}
	if baseline != nil {
		if excess.Lt(baseline) {
			excess.Clear()
		} else {
			excess.Sub(excess, baseline)
		}
	}
	if excess.IsZero() {
		return Wad(), nil
	}

	if sf.Gt(wad) {
		// Exact-in: m = WAD + (sf - WAD) * excess.
		rate := new(uint256.Int).Sub(sf, wad)
		delta, err := mulCheck(rate, excess)
		if err != nil {
			return nil, err
		}
		m := new(uint256.Int)
		if _, overflow := m.AddOverflow(wad, delta); overflow {
			return nil, ErrArithmeticOverflow
		}
		return m, nil
	}

	// Exact-out: m = WAD - (WAD - sf) * excess, floored at zero.
	rate := new(uint256.Int).Sub(wad, sf)
	delta, err := mulCheck(rate, excess)
	if err != nil {
		return nil, err
	}
	if delta.Gt(wad) {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).Sub(wad, delta), nil
}

// ScaleFillAmount applies multiplier m to a component's minimum fill
// amount. The minimum is a floor: it only moves when m exceeds WAD
// (exact-in), and then it rounds up against the filler.
func ScaleFillAmount(minimum *uint256.Int, m *uint256.Int) (*uint256.Int, error) {
	if minimum == nil {
		minimum = new(uint256.Int)
	}
	if !m.Gt(wad) {
		return new(uint256.Int).Set(minimum), nil
	}
	return MulWadUp(minimum, m)
}

// ScaleClaimAmounts applies multiplier m to the committed claim maxima.
// The maxima are ceilings: they only move when m sits below WAD
// (exact-out), and then each claim rounds down in the sponsor's favor.
func ScaleClaimAmounts(maxima []*uint256.Int, m *uint256.Int) ([]*uint256.Int, error) {
	claims := make([]*uint256.Int, len(maxima))
	for i, max := range maxima {
		if max == nil {
			max = new(uint256.Int)
		}
		if m.Lt(wad) {
			scaled, err := MulWadDown(max, m)
			if err != nil {
				return nil, err
			}
			claims[i] = scaled
		} else {
			claims[i] = new(uint256.Int).Set(max)
		}
	}
	return claims, nil
}
