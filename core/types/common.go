// Package types defines the core crossfill data structures: the
// commitment-side entities (locks, compacts, claims) and the
// mandate-side entities (fills, adjustments) that the settlement core
// prices and gates.
package types

import (
	"encoding/hex"
	"fmt"
)

const (
	HashLength    = 32
	AddressLength = 20
	LockTagLength = 12
)

// Hash represents the 32-byte Keccak256 hash of data.
type Hash [HashLength]byte

// Address represents a 20-byte account address.
type Address [AddressLength]byte

// LockTag is the 12-byte registry scope tag of a lock, assigned by the
// external commitment registry when the sponsor deposits collateral.
type LockTag [LockTagLength]byte

// BytesToHash converts bytes to Hash, left-padding if shorter than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash converts a hex string to Hash.
func HexToHash(s string) Hash {
	return BytesToHash(fromHex(s))
}

// Bytes returns the byte representation of the hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the hex string representation of the hash.
func (h Hash) Hex() string { return fmt.Sprintf("0x%x", h[:]) }

// SetBytes sets the hash from a byte slice, left-padding if necessary.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// IsZero returns whether the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// BytesToAddress converts bytes to Address, left-padding if shorter than 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress converts a hex string to Address.
func HexToAddress(s string) Address {
	return BytesToAddress(fromHex(s))
}

// Bytes returns the byte representation of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the hex string representation of the address.
func (a Address) Hex() string { return fmt.Sprintf("0x%x", a[:]) }

// SetBytes sets the address from a byte slice.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// IsZero returns whether the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// Bytes returns the byte representation of the lock tag.
func (t LockTag) Bytes() []byte { return t[:] }

// Hex returns the hex string representation of the lock tag.
func (t LockTag) Hex() string { return fmt.Sprintf("0x%x", t[:]) }

// fromHex decodes a hex string, tolerating an 0x prefix and odd length.
func fromHex(s string) []byte {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
