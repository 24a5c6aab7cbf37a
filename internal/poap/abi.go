package poap

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ContractAddress is the token contract deployed at the same address on every network.
const ContractAddress = "0x22C1f6050E56d2876009903609a2cC3fEf83B415"

// NullAddress is the sentinel used as the source of mints and the destination of burns.
var NullAddress = common.Address{}

const transferABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "from", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"},
      {"indexed": true, "internalType": "uint256", "name": "tokenId", "type": "uint256"}
    ],
    "name": "Transfer",
    "type": "event"
  }
]`

var (
	tokenABI     abi.ABI
	tokenABIOnce sync.Once
	tokenABIErr  error
)

// TokenABI returns the parsed token ABI.
func TokenABI() (abi.ABI, error) {
	tokenABIOnce.Do(func() {
		tokenABI, tokenABIErr = abi.JSON(strings.NewReader(transferABIJSON))
	})
	return tokenABI, tokenABIErr
}

// TransferTopic returns topic0 of the Transfer event.
func TransferTopic() (common.Hash, error) {
	parsed, err := TokenABI()
	if err != nil {
		return common.Hash{}, err
	}
	return parsed.Events["Transfer"].ID, nil
}
