package model

// Action is the semantic kind of a transfer.
type Action string

const (
	ActionMint     Action = "MINT"
	ActionTransfer Action = "TRANSFER"
	ActionBurn     Action = "BURN"
)

func (a Action) String() string {
	return string(a)
}
