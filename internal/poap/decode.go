package poap

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"poapFeed/internal/model"
)

type transferTopics struct {
	From    common.Address
	To      common.Address
	TokenId *big.Int
}

// DecodeTransfer converts a raw Transfer log into a TransferEvent.
func DecodeTransfer(network model.Network, log types.Log) (model.TransferEvent, error) {
	parsed, err := TokenABI()
	if err != nil {
		return model.TransferEvent{}, fmt.Errorf("parse token abi: %w", err)
	}
	event := parsed.Events["Transfer"]

	if len(log.Topics) == 0 {
		return model.TransferEvent{}, fmt.Errorf("missing topics")
	}
	if log.Topics[0] != event.ID {
		return model.TransferEvent{}, fmt.Errorf("unsupported topic0: %s", log.Topics[0].Hex())
	}

	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(log.Topics)-1 != len(indexed) {
		return model.TransferEvent{}, fmt.Errorf("expected %d indexed topics, got %d", len(indexed), len(log.Topics)-1)
	}

	var out transferTopics
	if err := abi.ParseTopics(&out, indexed, log.Topics[1:]); err != nil {
		return model.TransferEvent{}, fmt.Errorf("decode transfer topics: %w", err)
	}
	if out.TokenId == nil {
		return model.TransferEvent{}, fmt.Errorf("missing token id")
	}

	return model.TransferEvent{
		Network:     network,
		Contract:    log.Address,
		TokenID:     out.TokenId.String(),
		From:        out.From,
		To:          out.To,
		TxHash:      log.TxHash.Hex(),
		BlockNumber: log.BlockNumber,
		LogIndex:    uint64(log.Index),
	}, nil
}
