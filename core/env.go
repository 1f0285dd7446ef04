package core

import "github.com/holiman/uint256"

// BlockContext carries the execution-environment inputs a fill attempt
// is judged against: the current block number and timestamp, the
// network base fee, and the caller's effective gas price for the
// pending transaction. The gate reads it; nothing in the core writes
// it.
type BlockContext struct {
	Number    uint64
	Timestamp uint64 // unix seconds
	BaseFee   *uint256.Int
	GasPrice  *uint256.Int
}

// PriorityFee returns the caller's effective priority fee: gas price
// minus base fee, saturating at zero. The gate rejects gas price below
// base fee before this is ever consulted.
func (b *BlockContext) PriorityFee() *uint256.Int {
	fee := new(uint256.Int)
	if b.GasPrice != nil {
		fee.Set(b.GasPrice)
	}
	if b.BaseFee != nil {
		if fee.Lt(b.BaseFee) {
			fee.Clear()
		} else {
			fee.Sub(fee, b.BaseFee)
		}
	}
	return fee
}
