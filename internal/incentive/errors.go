package incentive

import "errors"

var (
	// ErrUnknownModality is returned when a period's modality has no scoring strategy
	ErrUnknownModality = errors.New("unknown incentive modality")

	// ErrTierTableMisconfigured is returned when tier entries violate ordering or value rules
	ErrTierTableMisconfigured = errors.New("tier table misconfigured")
)
