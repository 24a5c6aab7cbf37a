package poap

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"poapFeed/internal/model"
)

func TestDecodeTransfer(t *testing.T) {
	topic0, err := TransferTopic()
	if err != nil {
		t.Fatalf("transfer topic: %v", err)
	}

	holder := common.HexToAddress("0x4af37e995eb4fadc77a5ee355ae0a80edc5d1f04")
	log := types.Log{
		Address: common.HexToAddress(ContractAddress),
		Topics: []common.Hash{
			topic0,
			common.BytesToHash(NullAddress.Bytes()),
			common.BytesToHash(holder.Bytes()),
			common.BigToHash(big.NewInt(168570)),
		},
		TxHash:      common.HexToHash("0xabc"),
		BlockNumber: 15000000,
		Index:       3,
	}

	event, err := DecodeTransfer(model.NetworkXDAI, log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.TokenID != "168570" {
		t.Fatalf("token id mismatch: %s", event.TokenID)
	}
	if event.From != NullAddress || event.To != holder {
		t.Fatalf("address mismatch: %+v", event)
	}
	if event.Network != model.NetworkXDAI || event.BlockNumber != 15000000 || event.LogIndex != 3 {
		t.Fatalf("metadata mismatch: %+v", event)
	}
	if event.TxHash != common.HexToHash("0xabc").Hex() {
		t.Fatalf("tx hash mismatch: %s", event.TxHash)
	}
}

func TestTransferTopicSignature(t *testing.T) {
	topic0, err := TransferTopic()
	if err != nil {
		t.Fatalf("transfer topic: %v", err)
	}
	want := common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	if topic0 != want {
		t.Fatalf("topic mismatch: %s", topic0.Hex())
	}
}

func TestDecodeTransferMalformed(t *testing.T) {
	topic0, err := TransferTopic()
	if err != nil {
		t.Fatalf("transfer topic: %v", err)
	}

	if _, err := DecodeTransfer(model.NetworkMainnet, types.Log{}); err == nil {
		t.Fatalf("expected error for missing topics")
	}

	// ERC-20 style Transfer carries the amount in data, not as a third indexed topic.
	short := types.Log{Topics: []common.Hash{topic0, {}, {}}}
	if _, err := DecodeTransfer(model.NetworkMainnet, short); err == nil {
		t.Fatalf("expected error for short topics")
	}

	other := types.Log{Topics: []common.Hash{common.HexToHash("0x01"), {}, {}, {}}}
	if _, err := DecodeTransfer(model.NetworkMainnet, other); err == nil {
		t.Fatalf("expected error for foreign topic0")
	}
}
