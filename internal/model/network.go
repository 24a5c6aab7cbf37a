package model

import (
	"fmt"
	"strings"
)

// Network labels a chain the feed subscribes to.
type Network string

const (
	NetworkXDAI    Network = "XDAI"
	NetworkMainnet Network = "MAINNET"
)

// Networks lists every supported network in subscription order.
var Networks = []Network{NetworkXDAI, NetworkMainnet}

// ParseNetwork resolves a configured label into a Network.
func ParseNetwork(input string) (Network, error) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case string(NetworkXDAI), "GNOSIS":
		return NetworkXDAI, nil
	case string(NetworkMainnet), "ETHEREUM":
		return NetworkMainnet, nil
	default:
		return "", fmt.Errorf("unsupported network: %s", input)
	}
}

func (n Network) String() string {
	return string(n)
}
