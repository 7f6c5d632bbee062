package policy

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFailurePolicy = errors.New("unknow failure policy")
)

// FailurePolicy decides what a pipeline stage does when it fails: abort the
// run, or log and keep going with degraded state.
type FailurePolicy string

const (
	FailurePolicyFatal            FailurePolicy = "fatal"
	FailurePolicyContinueDegraded FailurePolicy = "continue"
)

func ParseFailurePolicy(s string) (d FailurePolicy, e error) {
	dataTypes := map[FailurePolicy]struct{}{
		FailurePolicyFatal:            {},
		FailurePolicyContinueDegraded: {},
	}

	dat := FailurePolicy(s)
	_, ok := dataTypes[dat]
	if !ok {
		return d, fmt.Errorf("cannot parse:[%s] as failure policy: %w", s, ErrInvalidFailurePolicy)
	}
	return dat, nil
}
