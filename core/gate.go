// The settlement gate: orders the validation chain for one fill
// attempt, verifies the structural hash chain and the adjuster
// signature, enforces one-time claim consumption, and hands the derived
// amounts to the external settlement collaborator.
//
// The gate owns no ambient state. Its capabilities -- consumption
// store, signature verifier, settler -- are injected, and everything
// else is pure computation over caller-supplied data.
package core

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/crossfill/crossfill/core/types"
	"github.com/crossfill/crossfill/crypto"
	"github.com/crossfill/crossfill/log"
)

// Gate failure modes. All are fatal to the single attempt and leave no
// durable mutation; see Fill for the one exception around settler
// errors.
var (
	ErrInvalidGasPrice  = errors.New("gate: transaction gas price below base fee")
	ErrExpired          = errors.New("gate: fill expired")
	ErrInvalidSignature = errors.New("gate: adjustment signature does not resolve to adjuster")
	ErrAlreadyClaimed   = errors.New("gate: claim already consumed")
	ErrInvalidFillIndex = errors.New("gate: fill index out of range")
)

// Settler executes the external effects of a successful fill attempt:
// moving output tokens to the components' recipients, releasing the
// claimed collateral to the claimant, and invoking recipient callbacks.
// It runs strictly after the claim hash has been consumed.
type Settler interface {
	Settle(d *Disposition) error
}

// ComponentDisposition is the executed form of one fill component.
type ComponentDisposition struct {
	Token     types.Address
	Recipient types.Address
	Amount    *uint256.Int
}

// Disposition carries everything the settlement collaborator needs to
// execute one fill: the derived per-component amounts, the claim
// amounts aligned with the compact's commitments, and the pass-through
// identifiers.
type Disposition struct {
	ClaimHash        types.Hash
	FillHash         types.Hash
	Sponsor          types.Address
	Claimant         *uint256.Int
	Components       []ComponentDisposition
	ClaimAmounts     []*uint256.Int
	Callbacks        []types.RecipientCallback
	AuxiliaryContext []byte
}

// GateOption configures optional gate collaborators.
type GateOption func(*Gate)

// WithLogger attaches a logger; the gate logs under module "gate".
func WithLogger(l *log.Logger) GateOption {
	return func(g *Gate) { g.log = l.Module("gate") }
}

// WithMetrics attaches fill-attempt metrics.
func WithMetrics(m *Metrics) GateOption {
	return func(g *Gate) { g.metrics = m }
}

// Gate is the settlement gate. Safe for concurrent use across distinct
// claim hashes; attempts racing on the same claim hash are serialized
// by the consumption store's test-and-set.
type Gate struct {
	store    ConsumedStore
	verifier crypto.Verifier
	settler  Settler
	log      *log.Logger
	metrics  *Metrics
}

// NewGate creates a settlement gate over the given capabilities.
func NewGate(store ConsumedStore, verifier crypto.Verifier, settler Settler, opts ...GateOption) *Gate {
	g := &Gate{
		store:    store,
		verifier: verifier,
		settler:  settler,
		log:      log.Default().Module("gate"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Consumed reports whether a claim hash has already been consumed.
func (g *Gate) Consumed(h types.Hash) (bool, error) {
	return g.store.Consumed(h)
}

// Fill executes one fill attempt. Validation order is fixed:
//
//  1. gas-price sanity (gas price >= base fee),
//  2. target block reached (0 = no designation),
//  3. fill not expired,
//  4. hash chain construction (fill, mandate, claim, adjustment),
//  5. adjuster signature over the adjustment hash,
//  6. amount derivation (pure; hoisted above consumption so a
//     derivation failure cannot burn the claim),
//  7. one-time consumption of the claim hash,
//  8. hand-off to the settler.
//
// The consumption mark in step 7 is the attempt's only durable
// mutation and precedes all external effects. If the settler fails
// afterwards the mark stands: replay protection is favored over
// liveness, and callers needing atomicity coordinate the store and the
// settler under one transactional boundary.
//
// siblingFillHashes is the ordered list of the mandate's other fill
// hashes; the executed fill's own hash is inserted at
// adjustment.FillIndex.
func (g *Gate) Fill(
	env *BlockContext,
	claim *types.Claim,
	fill *types.Fill,
	adjuster types.Address,
	adjustment *types.Adjustment,
	adjustmentSig []byte,
	siblingFillHashes []types.Hash,
	claimant *uint256.Int,
	auxiliaryContext []byte,
) (*Disposition, error) {
	d, err := g.fill(env, claim, fill, adjuster, adjustment, adjustmentSig,
		siblingFillHashes, claimant, auxiliaryContext)
	g.metrics.observeFill(outcomeLabel(err))
	if err != nil {
		g.log.Debug("fill rejected", "err", err, "block", env.Number)
		return nil, err
	}
	g.metrics.observeConsumed()
	g.log.Info("fill settled",
		"claim", d.ClaimHash, "fill", d.FillHash,
		"sponsor", d.Sponsor, "block", env.Number)
	return d, nil
}

func (g *Gate) fill(
	env *BlockContext,
	claim *types.Claim,
	fill *types.Fill,
	adjuster types.Address,
	adjustment *types.Adjustment,
	adjustmentSig []byte,
	siblingFillHashes []types.Hash,
	claimant *uint256.Int,
	auxiliaryContext []byte,
) (*Disposition, error) {
	// Gas-price sanity: effective gas price below the base fee is a
	// physically invalid combination and is rejected before anything
	// else is looked at.
	if env.BaseFee != nil && (env.GasPrice == nil || env.GasPrice.Lt(env.BaseFee)) {
		return nil, ErrInvalidGasPrice
	}

	if adjustment.TargetBlock != 0 && env.Number < adjustment.TargetBlock {
		return nil, fmt.Errorf("%w: current block %d, target block %d",
			ErrInvalidTargetBlock, env.Number, adjustment.TargetBlock)
	}

	if env.Timestamp >= fill.Expires {
		return nil, fmt.Errorf("%w: expired at %d", ErrExpired, fill.Expires)
	}

	// Hash chain: fill -> mandate -> claim -> adjustment.
	fillHash, err := FillHash(fill)
	if err != nil {
		return nil, err
	}
	if adjustment.FillIndex > uint64(len(siblingFillHashes)) {
		return nil, fmt.Errorf("%w: index %d, %d siblings",
			ErrInvalidFillIndex, adjustment.FillIndex, len(siblingFillHashes))
	}
	fillHashes := insertHash(siblingFillHashes, int(adjustment.FillIndex), fillHash)
	mandateHash := MandateHash(adjuster, fillHashes)
	claimHash := ClaimHash(&claim.Compact, mandateHash)
	adjustmentHash, err := AdjustmentHash(claimHash, adjustment)
	if err != nil {
		return nil, err
	}

	if !g.verifier.Verify(adjuster, adjustmentHash, adjustmentSig) {
		return nil, ErrInvalidSignature
	}

	// Amount derivation is pure; run it before consumption so a
	// malformed curve or adversarial scaling parameter cannot burn the
	// claim. The effective curve is the fill's own curve followed by
	// the adjuster's supplemental segments.
	curve := effectiveCurve(fill.PriceCurve, adjustment.SupplementalCurve)
	m, err := DeriveMultiplier(DeriveParams{
		PriceCurve:          curve,
		TargetBlock:         adjustment.TargetBlock,
		FillBlock:           env.Number,
		CurrentPriorityFee:  env.PriorityFee(),
		BaselinePriorityFee: fill.BaselinePriorityFee,
		ScalingFactor:       fill.ScalingFactor,
	})
	if err != nil {
		return nil, err
	}

	components := make([]ComponentDisposition, len(fill.Components))
	for i, c := range fill.Components {
		amount := c.MinimumAmount
		if c.ApplyScaling {
			amount, err = ScaleFillAmount(c.MinimumAmount, m)
			if err != nil {
				return nil, err
			}
		} else if amount == nil {
			amount = new(uint256.Int)
		}
		components[i] = ComponentDisposition{
			Token:     c.Token,
			Recipient: c.Recipient,
			Amount:    amount,
		}
	}

	maxima := make([]*uint256.Int, len(claim.Commitments))
	for i, l := range claim.Commitments {
		maxima[i] = l.Amount
	}
	claimAmounts, err := ScaleClaimAmounts(maxima, m)
	if err != nil {
		return nil, err
	}

	// One-time consumption: the durable mark, placed before external
	// effects so repeated or re-entrant attempts with the same claim
	// hash cannot double-spend.
	already, err := g.store.Consume(claimHash)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyClaimed, claimHash)
	}

	d := &Disposition{
		ClaimHash:        claimHash,
		FillHash:         fillHash,
		Sponsor:          claim.Sponsor,
		Claimant:         claimant,
		Components:       components,
		ClaimAmounts:     claimAmounts,
		Callbacks:        fill.Callbacks,
		AuxiliaryContext: auxiliaryContext,
	}
	if g.settler != nil {
		if err := g.settler.Settle(d); err != nil {
			return nil, fmt.Errorf("gate: settle: %w", err)
		}
	}
	return d, nil
}

// insertHash returns siblings with h inserted at index i.
func insertHash(siblings []types.Hash, i int, h types.Hash) []types.Hash {
	out := make([]types.Hash, 0, len(siblings)+1)
	out = append(out, siblings[:i]...)
	out = append(out, h)
	out = append(out, siblings[i:]...)
	return out
}

// effectiveCurve concatenates the fill's committed curve with the
// adjuster's supplemental segments.
func effectiveCurve(base, supplemental types.PriceCurve) types.PriceCurve {
	if len(supplemental) == 0 {
		return base
	}
	out := make(types.PriceCurve, 0, len(base)+len(supplemental))
	out = append(out, base...)
	out = append(out, supplemental...)
	return out
}

// outcomeLabel maps a fill error to its metrics label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidGasPrice):
		return "invalid_gas_price"
	case errors.Is(err, ErrInvalidTargetBlock):
		return "invalid_target_block"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, ErrInvalidTargetBlockDesignation):
		return "invalid_target_block_designation"
	case errors.Is(err, ErrArithmeticOverflow):
		return "arithmetic_overflow"
	default:
		return "error"
	}
}
