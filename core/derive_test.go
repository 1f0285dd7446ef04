package core

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/crossfill/crossfill/core/types"
)

func TestDeriveAmountsIdentityAtWad(t *testing.T) {
	// scalingFactor == WAD: no scaling regardless of priority fee.
	fill, claims, err := DeriveAmounts(DeriveParams{
		MaxClaimAmounts:     []*uint256.Int{wadTimes(5), wadTimes(7)},
		MinimumFillAmount:   wadTimes(2),
		CurrentPriorityFee:  uint256.NewInt(1_000_000),
		BaselinePriorityFee: uint256.NewInt(100),
		ScalingFactor:       Wad(),
	})
	if err != nil {
		t.Fatalf("DeriveAmounts: %v", err)
	}
	if !fill.Eq(wadTimes(2)) {
		t.Errorf("fill = %s, want minimum", fill.Dec())
	}
	if !claims[0].Eq(wadTimes(5)) || !claims[1].Eq(wadTimes(7)) {
		t.Errorf("claims = %s,%s, want maxima unchanged", claims[0].Dec(), claims[1].Dec())
	}
}

func TestDeriveAmountsIdentityWithoutExcess(t *testing.T) {
	// Priority fee at or below baseline: excess 0, identity even with a
	// non-WAD scaling factor.
	sf := new(uint256.Int).AddUint64(wad, 5)
	fill, claims, err := DeriveAmounts(DeriveParams{
		MaxClaimAmounts:     []*uint256.Int{wadTimes(5)},
		MinimumFillAmount:   wadTimes(2),
		CurrentPriorityFee:  uint256.NewInt(100),
		BaselinePriorityFee: uint256.NewInt(100),
		ScalingFactor:       sf,
	})
	if err != nil {
		t.Fatalf("DeriveAmounts: %v", err)
	}
	if !fill.Eq(wadTimes(2)) || !claims[0].Eq(wadTimes(5)) {
		t.Errorf("fill = %s claims[0] = %s, want identity", fill.Dec(), claims[0].Dec())
	}
}

func TestDeriveAmountsExactOut(t *testing.T) {
	// scalingFactor = WAD - 1, excess = 4: m = WAD - 4. The fill stays
	// at the floor; each claim is floor(max * m / WAD).
	sf := new(uint256.Int).SubUint64(wad, 1)
	fill, claims, err := DeriveAmounts(DeriveParams{
		MaxClaimAmounts:     []*uint256.Int{wadTimes(1), uint256.NewInt(1000)},
		MinimumFillAmount:   wadTimes(2),
		CurrentPriorityFee:  uint256.NewInt(104),
		BaselinePriorityFee: uint256.NewInt(100),
		ScalingFactor:       sf,
	})
	if err != nil {
		t.Fatalf("DeriveAmounts: %v", err)
	}
	if !fill.Eq(wadTimes(2)) {
		t.Errorf("exact-out fill = %s, want minimum unchanged", fill.Dec())
	}
	// 1e18 * (1e18-4)/1e18 = 1e18 - 4.
	want0 := new(uint256.Int).SubUint64(wad, 4)
	if !claims[0].Eq(want0) {
		t.Errorf("claims[0] = %s, want %s", claims[0].Dec(), want0.Dec())
	}
	// 1000 * (1e18-4)/1e18 truncates to 999.
	if claims[1].Uint64() != 999 {
		t.Errorf("claims[1] = %s, want 999 (rounded down)", claims[1].Dec())
	}
}

func TestDeriveAmountsExactIn(t *testing.T) {
	// scalingFactor = WAD + 2, excess = 3: m = WAD + 6. Claims stay at
	// the cap; the fill is ceil(min * m / WAD).
	sf := new(uint256.Int).AddUint64(wad, 2)
	fill, claims, err := DeriveAmounts(DeriveParams{
		MaxClaimAmounts:     []*uint256.Int{wadTimes(9)},
		MinimumFillAmount:   Wad(),
		CurrentPriorityFee:  uint256.NewInt(103),
		BaselinePriorityFee: uint256.NewInt(100),
		ScalingFactor:       sf,
	})
	if err != nil {
		t.Fatalf("DeriveAmounts: %v", err)
	}
	if !claims[0].Eq(wadTimes(9)) {
		t.Errorf("exact-in claims[0] = %s, want maximum unchanged", claims[0].Dec())
	}
	// 1e18 * (1e18+6)/1e18 = 1e18 + 6 exactly.
	want := new(uint256.Int).AddUint64(wad, 6)
	if !fill.Eq(want) {
		t.Errorf("fill = %s, want %s", fill.Dec(), want.Dec())
	}
}

func TestDeriveAmountsExactInRoundsUp(t *testing.T) {
	sf := new(uint256.Int).AddUint64(wad, 2)
	fill, _, err := DeriveAmounts(DeriveParams{
		MinimumFillAmount:   uint256.NewInt(1),
		CurrentPriorityFee:  uint256.NewInt(3),
		BaselinePriorityFee: new(uint256.Int),
		ScalingFactor:       sf,
	})
	if err != nil {
		t.Fatalf("DeriveAmounts: %v", err)
	}
	// 1 * (1e18+6)/1e18 = 1.000...006 -> ceil 2, charged to the filler.
	if fill.Uint64() != 2 {
		t.Errorf("fill = %s, want 2 (rounded up)", fill.Dec())
	}
}

func TestDeriveMultiplierClampsAtZero(t *testing.T) {
	// Reduction beyond WAD saturates: claims go to zero, never wrap.
	half := new(uint256.Int).Div(wad, uint256.NewInt(2))
	m, err := DeriveMultiplier(DeriveParams{
		CurrentPriorityFee:  uint256.NewInt(10),
		BaselinePriorityFee: new(uint256.Int),
		ScalingFactor:       half, // rate 0.5e18 per excess unit
	})
	if err != nil {
		t.Fatalf("DeriveMultiplier: %v", err)
	}
	if !m.IsZero() {
		t.Errorf("m = %s, want 0 (clamped)", m.Dec())
	}

	fill, claims, err := DeriveAmounts(DeriveParams{
		MaxClaimAmounts:     []*uint256.Int{wadTimes(3)},
		MinimumFillAmount:   wadTimes(2),
		CurrentPriorityFee:  uint256.NewInt(10),
		BaselinePriorityFee: new(uint256.Int),
		ScalingFactor:       half,
	})
	if err != nil {
		t.Fatalf("DeriveAmounts: %v", err)
	}
	if !fill.Eq(wadTimes(2)) {
		t.Errorf("fill = %s, want minimum", fill.Dec())
	}
	if !claims[0].IsZero() {
		t.Errorf("claims[0] = %s, want 0", claims[0].Dec())
	}
}

func TestDeriveMultiplierCurveModeIgnoresScalingFactor(t *testing.T) {
	// A non-empty curve disables priority-fee scaling entirely.
	curve := types.PriceCurve{seg(10, 600_000_000_000_000_000)}
	m, err := DeriveMultiplier(DeriveParams{
		PriceCurve:          curve,
		TargetBlock:         100,
		FillBlock:           102,
		CurrentPriorityFee:  uint256.NewInt(1_000_000),
		BaselinePriorityFee: uint256.NewInt(1),
		ScalingFactor:       new(uint256.Int).AddUint64(wad, 50),
	})
	if err != nil {
		t.Fatalf("DeriveMultiplier: %v", err)
	}
	want := uint256.NewInt(480_000_000_000_000_000)
	if !m.Eq(want) {
		t.Errorf("m = %s, want curve output %s", m.Dec(), want.Dec())
	}
}

func TestDeriveAmountsCurveExactIn(t *testing.T) {
	// Curve values above WAD drive exact-in scaling.
	curve := types.PriceCurve{seg(10, 2_000_000_000_000_000_000)}
	fill, claims, err := DeriveAmounts(DeriveParams{
		MaxClaimAmounts:   []*uint256.Int{wadTimes(4)},
		PriceCurve:        curve,
		TargetBlock:       100,
		FillBlock:         100,
		MinimumFillAmount: wadTimes(3),
	})
	if err != nil {
		t.Fatalf("DeriveAmounts: %v", err)
	}
	if !fill.Eq(wadTimes(6)) {
		t.Errorf("fill = %s, want 6e18", fill.Dec())
	}
	if !claims[0].Eq(wadTimes(4)) {
		t.Errorf("claims[0] = %s, want maximum unchanged", claims[0].Dec())
	}
}

func TestDeriveAmountsCurveWithoutAnchor(t *testing.T) {
	curve := types.PriceCurve{seg(10, 600_000_000_000_000_000)}
	_, _, err := DeriveAmounts(DeriveParams{
		MaxClaimAmounts:   []*uint256.Int{wadTimes(1)},
		PriceCurve:        curve,
		TargetBlock:       0,
		FillBlock:         50,
		MinimumFillAmount: wadTimes(1),
	})
	if !errors.Is(err, ErrInvalidTargetBlockDesignation) {
		t.Fatalf("got %v, want ErrInvalidTargetBlockDesignation", err)
	}
}

func TestDeriveAmountsOverflowPropagates(t *testing.T) {
	// Adversarial scaling factor: (sf - WAD) * excess overflows.
	sf := new(uint256.Int).Set(maxUint256)
	_, _, err := DeriveAmounts(DeriveParams{
		MaxClaimAmounts:     []*uint256.Int{wadTimes(1)},
		MinimumFillAmount:   wadTimes(1),
		CurrentPriorityFee:  uint256.NewInt(3),
		BaselinePriorityFee: new(uint256.Int),
		ScalingFactor:       sf,
	})
	if !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("got %v, want ErrArithmeticOverflow", err)
	}
}

func TestDeriveAmountsNilScalingFactorIsIdentity(t *testing.T) {
	fill, claims, err := DeriveAmounts(DeriveParams{
		MaxClaimAmounts:    []*uint256.Int{wadTimes(1)},
		MinimumFillAmount:  wadTimes(1),
		CurrentPriorityFee: uint256.NewInt(50),
	})
	if err != nil {
		t.Fatalf("DeriveAmounts: %v", err)
	}
	if !fill.Eq(wadTimes(1)) || !claims[0].Eq(wadTimes(1)) {
		t.Errorf("nil scaling factor should behave as WAD")
	}
}
