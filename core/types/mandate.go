package types

import "github.com/holiman/uint256"

// Lock is one sponsor-committed collateral line: a maximum claimable
// amount of one token. Amount is a ceiling and never increases after
// commitment.
type Lock struct {
	Tag    LockTag
	Token  Address
	Amount *uint256.Int
}

// Compact is a sponsor's signed claim batch. Nonce uniqueness across
// the sponsor's lifetime is enforced by the external commitment
// registry, not by this core.
type Compact struct {
	Arbiter     Address
	Sponsor     Address
	Nonce       *uint256.Int
	Expires     uint64 // unix seconds
	Commitments []Lock
}

// Claim is a Compact bound to a chain, together with the sponsor and
// allocator signatures. The signatures are carried opaquely; they are
// verified by the external registry. This core only re-derives the
// claim hash and enforces one-time consumption.
type Claim struct {
	Compact
	ChainID            uint64
	SponsorSignature   []byte
	AllocatorSignature []byte
}

// FillComponent is one output leg of a fill. MinimumAmount is a floor
// (exact-in) or the exact delivery (exact-out). A component with
// ApplyScaling unset keeps its minimum amount even when exact-in
// scaling raises the others.
type FillComponent struct {
	Token         Address
	MinimumAmount *uint256.Int
	Recipient     Address
	ApplyScaling  bool
}

// RecipientCallback describes a post-fill call the settlement
// collaborator makes on the fill's behalf. Execution is out of core
// scope; the callback is part of the fill hash so the sponsor's
// signature covers it.
type RecipientCallback struct {
	Target  Address
	Context []byte
}

// Fill is one step of a mandate, executable on one designated
// settlement instance. Salt guarantees hash uniqueness across
// otherwise-identical fills.
type Fill struct {
	ChainID             uint64
	Settler             Address
	Expires             uint64 // unix seconds, strict upper bound on execution
	Components          []FillComponent
	BaselinePriorityFee *uint256.Int
	ScalingFactor       *uint256.Int // WAD-scaled
	PriceCurve          PriceCurve
	Callbacks           []RecipientCallback
	Salt                Hash
}

// Mandate is the full multi-leg intent. Fill order is semantically
// significant: adjustments address fills by index.
type Mandate struct {
	Adjuster Address
	Fills    []Fill
}

// Adjustment carries the adjuster-supplied runtime parameters for
// executing one fill: which leg, which anchor block, supplemental
// curve segments, and opaque validity conditions. It is transient; only
// its effect (claim consumption) persists.
type Adjustment struct {
	FillIndex          uint64
	TargetBlock        uint64 // 0 = no designation
	SupplementalCurve  PriceCurve
	ValidityConditions []byte
}
