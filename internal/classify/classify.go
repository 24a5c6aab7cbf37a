// Package classify maps transfer endpoints to a semantic action.
package classify

import (
	"github.com/ethereum/go-ethereum/common"

	"poapFeed/internal/model"
	"poapFeed/internal/poap"
)

// Classify returns MINT when the source is the null address, BURN when the
// destination is, and TRANSFER otherwise. The source is checked first, so a
// null-to-null transfer is a MINT.
//
// Addresses are compared as bytes, so hex casing from the transport does not matter.
func Classify(from, to common.Address) model.Action {
	if from == poap.NullAddress {
		return model.ActionMint
	}
	if to == poap.NullAddress {
		return model.ActionBurn
	}
	return model.ActionTransfer
}

// Event classifies a decoded transfer.
func Event(event model.TransferEvent) model.Action {
	return Classify(event.From, event.To)
}
