package enrich

import "fmt"

// Stage names one lookup in the enrichment chain.
type Stage string

const (
	StageDescriptor Stage = "descriptor"
	StageAlias      Stage = "alias"
	StagePower      Stage = "power"
)

// LookupError tags a failed lookup with the stage it failed in.
type LookupError struct {
	Stage   Stage
	TokenID string
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup for token %s: %v", e.Stage, e.TokenID, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
