// Structural hash chain binding a sponsor's single signature to an
// entire multi-leg mandate, and an adjuster's runtime parameters to one
// specific claim:
//
//	fillHash -> mandateHash -> claimHash -> adjustmentHash
//
// Every hash is a domain-separated keccak over a fixed layout of
// 32-byte words, EIP-712 style: structs hash a versioned typehash tag
// followed by their fields, dynamic lists hash the concatenation of
// their elements' encodings. Identical inputs always yield identical
// hashes; nothing here has side effects.
package core

import (
	"github.com/holiman/uint256"

	"github.com/crossfill/crossfill/core/types"
	"github.com/crossfill/crossfill/crypto"
)

// Typehash tags. Changing any descriptor is a wire-format break.
var (
	lockTypeHash       = crypto.Keccak256Hash([]byte("Lock(bytes12 tag,address token,uint256 amount)"))
	componentTypeHash  = crypto.Keccak256Hash([]byte("FillComponent(address token,uint256 minimumAmount,address recipient,bool applyScaling)"))
	callbackTypeHash   = crypto.Keccak256Hash([]byte("RecipientCallback(address target,bytes context)"))
	fillTypeHash       = crypto.Keccak256Hash([]byte("Fill(uint64 chainId,address settler,uint64 expires,FillComponent[] components,uint256 baselinePriorityFee,uint256 scalingFactor,uint256[] priceCurve,RecipientCallback[] callbacks,bytes32 salt)"))
	mandateTypeHash    = crypto.Keccak256Hash([]byte("Mandate(address adjuster,bytes32[] fillHashes)"))
	adjustmentTypeHash = crypto.Keccak256Hash([]byte("Adjustment(bytes32 claimHash,uint64 fillIndex,uint64 targetBlock,uint256[] supplementalPriceCurve,bytes validityConditions)"))
)

// wordEncoder accumulates a sequence of 32-byte words for hashing.
type wordEncoder struct {
	buf []byte
}

func newWordEncoder(words int) *wordEncoder {
	return &wordEncoder{buf: make([]byte, 0, words*types.HashLength)}
}

func (e *wordEncoder) hash(h types.Hash) *wordEncoder {
	e.buf = append(e.buf, h[:]...)
	return e
}

func (e *wordEncoder) word(w [32]byte) *wordEncoder {
	e.buf = append(e.buf, w[:]...)
	return e
}

// addr encodes an address left-padded to 32 bytes.
func (e *wordEncoder) addr(a types.Address) *wordEncoder {
	var w [32]byte
	copy(w[32-types.AddressLength:], a[:])
	return e.word(w)
}

// tag encodes a lock tag right-padded to 32 bytes, bytes12 layout.
func (e *wordEncoder) tag(t types.LockTag) *wordEncoder {
	var w [32]byte
	copy(w[:types.LockTagLength], t[:])
	return e.word(w)
}

// u64 encodes an unsigned integer left-padded to 32 bytes.
func (e *wordEncoder) u64(x uint64) *wordEncoder {
	var w [32]byte
	w[24] = byte(x >> 56)
	w[25] = byte(x >> 48)
	w[26] = byte(x >> 40)
	w[27] = byte(x >> 32)
	w[28] = byte(x >> 24)
	w[29] = byte(x >> 16)
	w[30] = byte(x >> 8)
	w[31] = byte(x)
	return e.word(w)
}

// u256 encodes a 256-bit integer big-endian. nil encodes as zero.
func (e *wordEncoder) u256(x *uint256.Int) *wordEncoder {
	if x == nil {
		return e.word([32]byte{})
	}
	return e.word(x.Bytes32())
}

// boolean encodes false as zero and true as one.
func (e *wordEncoder) boolean(b bool) *wordEncoder {
	var w [32]byte
	if b {
		w[31] = 1
	}
	return e.word(w)
}

func (e *wordEncoder) digest() types.Hash {
	return crypto.Keccak256Hash(e.buf)
}

// LockHash hashes one commitment line.
func LockHash(l types.Lock) types.Hash {
	return newWordEncoder(4).
		hash(lockTypeHash).
		tag(l.Tag).
		addr(l.Token).
		u256(l.Amount).
		digest()
}

// CommitmentsHash folds the ordered lock hashes of a compact into one
// hash.
func CommitmentsHash(locks []types.Lock) types.Hash {
	e := newWordEncoder(len(locks))
	for _, l := range locks {
		e.hash(LockHash(l))
	}
	return e.digest()
}

// ComponentHash hashes one output leg of a fill.
func ComponentHash(c types.FillComponent) types.Hash {
	return newWordEncoder(5).
		hash(componentTypeHash).
		addr(c.Token).
		u256(c.MinimumAmount).
		addr(c.Recipient).
		boolean(c.ApplyScaling).
		digest()
}

// CallbackHash hashes one post-fill recipient callback. The dynamic
// context is folded in by hash.
func CallbackHash(cb types.RecipientCallback) types.Hash {
	return newWordEncoder(3).
		hash(callbackTypeHash).
		addr(cb.Target).
		hash(crypto.Keccak256Hash(cb.Context)).
		digest()
}

// CurveHash hashes a price curve as the concatenation of its packed
// segment words. An empty curve hashes the empty byte string.
func CurveHash(curve types.PriceCurve) (types.Hash, error) {
	words, err := curve.Pack()
	if err != nil {
		return types.Hash{}, err
	}
	e := newWordEncoder(len(words))
	for _, w := range words {
		e.word(w)
	}
	return e.digest(), nil
}

// FillHash hashes one fill leg. Everything the filler is obligated by
// is folded in, so no field can change without invalidating the
// sponsor's eventual signature; the salt keeps otherwise-identical
// fills distinct.
func FillHash(f *types.Fill) (types.Hash, error) {
	components := newWordEncoder(len(f.Components))
	for _, c := range f.Components {
		components.hash(ComponentHash(c))
	}
	callbacks := newWordEncoder(len(f.Callbacks))
	for _, cb := range f.Callbacks {
		callbacks.hash(CallbackHash(cb))
	}
	curveHash, err := CurveHash(f.PriceCurve)
	if err != nil {
		return types.Hash{}, err
	}
	return newWordEncoder(10).
		hash(fillTypeHash).
		u64(f.ChainID).
		addr(f.Settler).
		u64(f.Expires).
		hash(components.digest()).
		u256(f.BaselinePriorityFee).
		u256(f.ScalingFactor).
		hash(curveHash).
		hash(callbacks.digest()).
		hash(f.Salt).
		digest(), nil
}

// MandateHash folds every leg's fill hash under the adjuster identity.
// A signature over a structure containing this hash authorizes the
// entire multi-leg mandate atomically.
func MandateHash(adjuster types.Address, fillHashes []types.Hash) types.Hash {
	e := newWordEncoder(len(fillHashes))
	for _, h := range fillHashes {
		e.hash(h)
	}
	return newWordEncoder(3).
		hash(mandateTypeHash).
		addr(adjuster).
		hash(e.digest()).
		digest()
}

// ClaimHash binds a sponsor's static commitment to one specific
// mandate. The layout is untagged: it mirrors the external registry's
// claim-hash wire format, which this core re-derives but does not own.
func ClaimHash(c *types.Compact, mandateHash types.Hash) types.Hash {
	return newWordEncoder(6).
		addr(c.Arbiter).
		addr(c.Sponsor).
		u256(c.Nonce).
		u64(c.Expires).
		hash(CommitmentsHash(c.Commitments)).
		hash(mandateHash).
		digest()
}

// AdjustmentHash binds the adjuster's runtime choices to one specific
// claim, so an adjuster authorization cannot be redirected to a
// different sponsor commitment.
func AdjustmentHash(claimHash types.Hash, a *types.Adjustment) (types.Hash, error) {
	curveHash, err := CurveHash(a.SupplementalCurve)
	if err != nil {
		return types.Hash{}, err
	}
	return newWordEncoder(6).
		hash(adjustmentTypeHash).
		hash(claimHash).
		u64(a.FillIndex).
		u64(a.TargetBlock).
		hash(curveHash).
		hash(crypto.Keccak256Hash(a.ValidityConditions)).
		digest(), nil
}
