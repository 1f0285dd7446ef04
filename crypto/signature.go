// Adjuster signature verification.
//
// Signatures are 65-byte compact ECDSA over secp256k1: R (32) || S (32)
// || V (1), with V accepted as a raw recovery id (0/1) or in Ethereum
// legacy form (27/28). Recovery is delegated to go-ethereum's secp256k1
// bindings; this package is the only importer of go-ethereum.
package crypto

import (
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/crossfill/crossfill/core/types"
)

// SignatureLength is the size of a compact R || S || V signature.
const SignatureLength = 65

// Verifier checks that a signature over a 32-byte digest resolves to
// the expected signer. Implementations must treat any malformed
// signature as a verification failure, never as an error.
type Verifier interface {
	Verify(signer types.Address, digest types.Hash, sig []byte) bool
}

// EcdsaVerifier verifies compact secp256k1 signatures by public key
// recovery and address comparison. Stateless; safe for concurrent use.
type EcdsaVerifier struct{}

// NewEcdsaVerifier creates a new EcdsaVerifier.
func NewEcdsaVerifier() *EcdsaVerifier {
	return &EcdsaVerifier{}
}

// Verify recovers the public key from sig over digest and compares the
// derived address to signer. Returns false for signatures that are not
// 65 bytes, carry an invalid V, or fail recovery.
func (v *EcdsaVerifier) Verify(signer types.Address, digest types.Hash, sig []byte) bool {
	if len(sig) != SignatureLength {
		return false
	}
	// Normalize V to a raw recovery id for go-ethereum.
	norm := make([]byte, SignatureLength)
	copy(norm, sig)
	switch norm[64] {
	case 0, 1:
	case 27, 28:
		norm[64] -= 27
	default:
		return false
	}
	pub, err := gethcrypto.SigToPub(digest.Bytes(), norm)
	if err != nil {
		return false
	}
	recovered := gethcrypto.PubkeyToAddress(*pub)
	return types.BytesToAddress(recovered.Bytes()) == signer
}
