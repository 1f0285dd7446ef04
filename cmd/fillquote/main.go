// Command fillquote quotes a fill offline: given the committed
// parameters of one fill leg and the environmental inputs, it prints
// the fill amount the filler must deliver and the claim amounts the
// filler may take. It exercises exactly the amount-derivation engine
// the settlement gate runs on-path.
//
// Usage:
//
//	fillquote [flags]
//
// Flags:
//
//	--min       minimum fill amount (decimal)
//	--max       comma-separated maximum claim amounts (decimal)
//	--scaling   WAD-scaled scaling factor (default 1e18)
//	--baseline  baseline priority fee in wei (default 0)
//	--priority  current priority fee in wei (default 0)
//	--curve     price curve as duration:valueWad[,duration:valueWad...]
//	--target    target block (0 = undesignated)
//	--block     fill block
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/crossfill/crossfill/core"
	"github.com/crossfill/crossfill/core/types"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in
// isolation.
func run(args []string, out *os.File) int {
	fs := flag.NewFlagSet("fillquote", flag.ContinueOnError)
	var (
		minFlag      = fs.String("min", "0", "minimum fill amount (decimal)")
		maxFlag      = fs.String("max", "", "comma-separated maximum claim amounts")
		scalingFlag  = fs.String("scaling", "1000000000000000000", "WAD-scaled scaling factor")
		baselineFlag = fs.String("baseline", "0", "baseline priority fee (wei)")
		priorityFlag = fs.String("priority", "0", "current priority fee (wei)")
		curveFlag    = fs.String("curve", "", "price curve as duration:valueWad[,...]")
		targetFlag   = fs.Uint64("target", 0, "target block (0 = undesignated)")
		blockFlag    = fs.Uint64("block", 0, "fill block")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	params, err := buildParams(*minFlag, *maxFlag, *scalingFlag,
		*baselineFlag, *priorityFlag, *curveFlag, *targetFlag, *blockFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fillquote: %v\n", err)
		return 2
	}

	fillAmount, claimAmounts, err := core.DeriveAmounts(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fillquote: %v\n", err)
		return 1
	}

	fmt.Fprintf(out, "fill amount: %s\n", fillAmount.Dec())
	for i, c := range claimAmounts {
		fmt.Fprintf(out, "claim[%d]:    %s\n", i, c.Dec())
	}
	return 0
}

func buildParams(min, max, scaling, baseline, priority, curve string, target, block uint64) (core.DeriveParams, error) {
	var p core.DeriveParams
	var err error

	if p.MinimumFillAmount, err = parseAmount("min", min); err != nil {
		return p, err
	}
	if p.ScalingFactor, err = parseAmount("scaling", scaling); err != nil {
		return p, err
	}
	if p.BaselinePriorityFee, err = parseAmount("baseline", baseline); err != nil {
		return p, err
	}
	if p.CurrentPriorityFee, err = parseAmount("priority", priority); err != nil {
		return p, err
	}
	if max != "" {
		for _, part := range strings.Split(max, ",") {
			a, err := parseAmount("max", strings.TrimSpace(part))
			if err != nil {
				return p, err
			}
			p.MaxClaimAmounts = append(p.MaxClaimAmounts, a)
		}
	}
	if p.PriceCurve, err = parseCurve(curve); err != nil {
		return p, err
	}
	p.TargetBlock = target
	p.FillBlock = block
	return p, nil
}

func parseAmount(name, s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", name, s, err)
	}
	return v, nil
}

// parseCurve parses duration:valueWad pairs separated by commas.
func parseCurve(s string) (types.PriceCurve, error) {
	if s == "" {
		return nil, nil
	}
	var curve types.PriceCurve
	for _, part := range strings.Split(s, ",") {
		dur, val, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("invalid curve segment %q: want duration:valueWad", part)
		}
		d, err := strconv.ParseUint(dur, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid curve duration %q: %w", dur, err)
		}
		v, err := uint256.FromDecimal(val)
		if err != nil {
			return nil, fmt.Errorf("invalid curve value %q: %w", val, err)
		}
		curve = append(curve, types.CurveSegment{Duration: d, Value: v})
	}
	return curve, nil
}
