package classify

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"poapFeed/internal/model"
	"poapFeed/internal/poap"
)

func TestClassify(t *testing.T) {
	x := common.HexToAddress("0x1111111111111111111111111111111111111111")
	y := common.HexToAddress("0x2222222222222222222222222222222222222222")

	cases := []struct {
		name string
		from common.Address
		to   common.Address
		want model.Action
	}{
		{"null to null", poap.NullAddress, poap.NullAddress, model.ActionMint},
		{"mint", poap.NullAddress, x, model.ActionMint},
		{"burn", x, poap.NullAddress, model.ActionBurn},
		{"transfer", x, y, model.ActionTransfer},
	}

	for _, tc := range cases {
		if got := Classify(tc.from, tc.to); got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestClassifyIgnoresHexCase(t *testing.T) {
	upper := common.HexToAddress("0x4AF37E995EB4FADC77A5EE355AE0A80EDC5D1F04")
	lower := common.HexToAddress("0x4af37e995eb4fadc77a5ee355ae0a80edc5d1f04")
	if upper != lower {
		t.Fatalf("hex parsing should be case-insensitive")
	}
	if got := Classify(common.HexToAddress("0x0000000000000000000000000000000000000000"), upper); got != model.ActionMint {
		t.Fatalf("got %s want MINT", got)
	}
}

func TestEvent(t *testing.T) {
	event := model.TransferEvent{
		From: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		To:   poap.NullAddress,
	}
	if got := Event(event); got != model.ActionBurn {
		t.Fatalf("got %s want BURN", got)
	}
}
