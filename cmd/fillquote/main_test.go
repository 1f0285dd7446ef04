package main

import "testing"

func TestParseCurve(t *testing.T) {
	curve, err := parseCurve("3:1200000000000000000, 10:600000000000000000")
	if err != nil {
		t.Fatalf("parseCurve: %v", err)
	}
	if len(curve) != 2 {
		t.Fatalf("len = %d, want 2", len(curve))
	}
	if curve[0].Duration != 3 || curve[1].Duration != 10 {
		t.Errorf("durations = %d,%d, want 3,10", curve[0].Duration, curve[1].Duration)
	}
	if curve[1].Value.Uint64() != 600_000_000_000_000_000 {
		t.Errorf("value = %s", curve[1].Value.Dec())
	}
}

func TestParseCurveEmpty(t *testing.T) {
	curve, err := parseCurve("")
	if err != nil || curve != nil {
		t.Fatalf("empty curve: %v, %v", curve, err)
	}
}

func TestParseCurveMalformed(t *testing.T) {
	for _, in := range []string{"3", "x:1", "3:y", "70000:1"} {
		if _, err := parseCurve(in); err == nil {
			t.Errorf("parseCurve(%q) should fail", in)
		}
	}
}

func TestBuildParams(t *testing.T) {
	p, err := buildParams("1000", "500,600", "1000000000000000000",
		"100", "150", "", 0, 0)
	if err != nil {
		t.Fatalf("buildParams: %v", err)
	}
	if p.MinimumFillAmount.Uint64() != 1000 {
		t.Errorf("min = %s", p.MinimumFillAmount.Dec())
	}
	if len(p.MaxClaimAmounts) != 2 || p.MaxClaimAmounts[1].Uint64() != 600 {
		t.Errorf("max = %v", p.MaxClaimAmounts)
	}
	if p.CurrentPriorityFee.Uint64() != 150 {
		t.Errorf("priority = %s", p.CurrentPriorityFee.Dec())
	}
}

func TestBuildParamsBadAmount(t *testing.T) {
	if _, err := buildParams("nope", "", "1", "0", "0", "", 0, 0); err == nil {
		t.Fatal("invalid amount should fail")
	}
}
