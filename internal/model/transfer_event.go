package model

import "github.com/ethereum/go-ethereum/common"

// TransferEvent is a decoded Transfer log from the token contract.
type TransferEvent struct {
	Network     Network        `json:"network"`
	Contract    common.Address `json:"contract"`
	TokenID     string         `json:"token_id"`
	From        common.Address `json:"from"`
	To          common.Address `json:"to"`
	TxHash      string         `json:"tx_hash"`
	BlockNumber uint64         `json:"block_number"`
	LogIndex    uint64         `json:"log_index"`
}
